package kazert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU128FromAndNarrow(t *testing.T) {
	u := U128FromU64(math.MaxUint64)
	require.Equal(t, uint64(0), u.Hi)
	assert.Equal(t, uint64(math.MaxUint64), u.ToU64())
	assert.Equal(t, uint32(math.MaxUint32), u.ToU32())
}

func TestMask(t *testing.T) {
	all := U128{Hi: ^uint64(0), Lo: ^uint64(0)}

	assert.True(t, all.Mask(0).IsZero())
	assert.Equal(t, all, all.Mask(128))
	assert.Equal(t, U128{Lo: 0xff}, all.Mask(8))
	assert.Equal(t, U128{Hi: 0xf, Lo: ^uint64(0)}, all.Mask(68))
}

func TestShlShr(t *testing.T) {
	u := U128{Lo: 1}
	assert.Equal(t, U128{Hi: 1}, u.Shl(64))
	assert.Equal(t, U128{Hi: 0, Lo: 1 << 63}, u.Shl(63))
	assert.True(t, u.Shl(128).IsZero())

	v := U128{Hi: 1}
	assert.Equal(t, U128{Lo: 1}, v.Shr(64))
	assert.True(t, v.Shr(128).IsZero())
}

func TestShrArithmeticPositive(t *testing.T) {
	u := U128{Hi: 0, Lo: 0x8} // positive (sign bit clear)
	assert.Equal(t, U128{Lo: 0x1}, u.ShrArithmetic(3))
}

func TestShrArithmeticNegative(t *testing.T) {
	neg := U128{Hi: ^uint64(0), Lo: 0} // -2^64, sign bit set
	got := neg.ShrArithmetic(4)
	want := U128{Hi: ^uint64(0), Lo: 0}.Shr(4).Or(onesFrom(128 - 4))
	assert.Equal(t, want, got)
	assert.True(t, int64(got.Hi) < 0, "arithmetic shift of a negative value must stay negative")
}

func TestShrArithmeticAllOnesShiftsToAllOnes(t *testing.T) {
	allOnes := U128{Hi: ^uint64(0), Lo: ^uint64(0)}
	assert.Equal(t, allOnes, allOnes.ShrArithmetic(1))
	assert.Equal(t, allOnes, allOnes.ShrArithmetic(200))
}

func TestMin(t *testing.T) {
	a := U128{Hi: 1, Lo: 0}
	b := U128{Lo: 0xffff_ffff}
	assert.Equal(t, b, a.Min(b))
	assert.Equal(t, b, b.Min(a))
	assert.Equal(t, a, a.Min(a))
}

func TestWrappingAddSub(t *testing.T) {
	max := U128{Hi: ^uint64(0), Lo: ^uint64(0)}
	one := U128{Lo: 1}
	assert.True(t, max.WrappingAdd(one).IsZero())
	assert.Equal(t, max, U128{}.WrappingSub(one))
}

func TestWrappingMul(t *testing.T) {
	a := U128{Lo: 1 << 63}
	two := U128{Lo: 2}
	assert.Equal(t, U128{Hi: 1}, a.WrappingMul(two), "carry into the high word")

	max := U128{Hi: ^uint64(0), Lo: ^uint64(0)} // -1 in two's complement
	assert.Equal(t, max, max.WrappingMul(U128{Lo: 1}))
	assert.Equal(t, U128{Lo: 1}, max.WrappingMul(max), "(-1) * (-1) wraps to 1")
}

func TestComparisons(t *testing.T) {
	a := U128{Hi: 1, Lo: 0}
	b := U128{Hi: 0, Lo: ^uint64(0)}
	assert.True(t, a.Gt(b))
	assert.True(t, b.Lt(a))
	assert.True(t, a.Ge(a))
	assert.True(t, a.Le(a))
	assert.True(t, a.Ne(b))
	assert.False(t, a.Eq(b))
}

func TestSignedComparisons(t *testing.T) {
	negOne := U128{Hi: ^uint64(0), Lo: ^uint64(0)}
	one := U128{Lo: 1}
	assert.True(t, negOne.LtS(one))
	assert.False(t, negOne.GtS(one))
	assert.True(t, one.GtS(negOne))
	assert.True(t, negOne.LeS(negOne))
	assert.True(t, negOne.GeS(negOne))
}
