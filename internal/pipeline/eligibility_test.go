package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestDBR(t *testing.T) {
	t.Run("Computed", func(t *testing.T) {
		dbr := DBR(20000, fptr(8000))
		require.NotNil(t, dbr)
		assert.InDelta(t, 40.0, *dbr, 0.0001)
	})

	t.Run("Unknown When Liabilities Absent", func(t *testing.T) {
		assert.Nil(t, DBR(20000, nil))
	})

	t.Run("Unknown When Liabilities Zero", func(t *testing.T) {
		// Zero liabilities means "not entered", not a DBR of zero.
		assert.Nil(t, DBR(20000, fptr(0)))
	})

	t.Run("Unknown When Salary Not Positive", func(t *testing.T) {
		assert.Nil(t, DBR(0, fptr(5000)))
		assert.Nil(t, DBR(-100, fptr(5000)))
	})

	t.Run("Monotone In Liabilities", func(t *testing.T) {
		salary := 25000.0
		prev := 0.0
		for _, liabilities := range []float64{1000, 2500, 5000, 12500, 25000, 40000} {
			dbr := DBR(salary, fptr(liabilities))
			require.NotNil(t, dbr)
			assert.Greater(t, *dbr, prev)
			prev = *dbr
		}
	})
}

func TestLTV(t *testing.T) {
	t.Run("Computed", func(t *testing.T) {
		ltv := LTV(fptr(800000), fptr(1000000))
		require.NotNil(t, ltv)
		assert.InDelta(t, 80.0, *ltv, 0.0001)
	})

	t.Run("Unknown Without Property Value", func(t *testing.T) {
		assert.Nil(t, LTV(fptr(800000), nil))
		assert.Nil(t, LTV(fptr(800000), fptr(0)))
	})

	t.Run("Unknown Without Loan Amount", func(t *testing.T) {
		assert.Nil(t, LTV(nil, fptr(1000000)))
		assert.Nil(t, LTV(fptr(0), fptr(1000000)))
	})
}

func TestMaxLoan(t *testing.T) {
	t.Run("Computed", func(t *testing.T) {
		// (30000*0.5 - 5000) * 240 = 2,400,000
		maxLoan := MaxLoan(30000, fptr(5000))
		require.NotNil(t, maxLoan)
		assert.InDelta(t, 2400000.0, *maxLoan, 0.0001)
	})

	t.Run("Absent Liabilities Treated As Zero", func(t *testing.T) {
		maxLoan := MaxLoan(30000, nil)
		require.NotNil(t, maxLoan)
		assert.InDelta(t, 3600000.0, *maxLoan, 0.0001)
	})

	t.Run("Unknown When Salary Not Positive", func(t *testing.T) {
		assert.Nil(t, MaxLoan(0, fptr(5000)))
	})
}

func TestLTVLimit(t *testing.T) {
	assert.Equal(t, 85.0, LTVLimit(ResidencyUAENational))
	assert.Equal(t, 80.0, LTVLimit(ResidencyUAEResident))
	assert.Equal(t, 80.0, LTVLimit(ResidencyNonResident))
	assert.Equal(t, 80.0, LTVLimit(Residency("unknown")))
}

func TestDBRLimit(t *testing.T) {
	assert.Equal(t, 50.0, DBRLimit())
}
