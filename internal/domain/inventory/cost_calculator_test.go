package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-pos/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAverageCost(t *testing.T) {
	got := inventory.AverageCost(d("25"), d("500"), d("10"), d("480"))
	assert.True(t, got.Equal(d("494.2857")), got.String())
}

func TestAverageCost_SinStockPrevio(t *testing.T) {
	got := inventory.AverageCost(d("0"), d("999"), d("4"), d("12.5"))
	assert.True(t, got.Equal(d("12.5")), got.String())
}

func TestAverageCost_StockNegativoSeIgnora(t *testing.T) {
	got := inventory.AverageCost(d("-3"), d("100"), d("2"), d("50"))
	assert.True(t, got.Equal(d("50")), got.String())
}

func TestAverageCost_EntradaNula(t *testing.T) {
	got := inventory.AverageCost(d("0"), d("10"), d("0"), d("7"))
	assert.True(t, got.Equal(d("7")))
}
