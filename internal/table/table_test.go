package table

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func transactions(n int) []core.Transaction {
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Transaction{
			Date:        core.NewDate(2024, 1, i%28+1),
			Description: fmt.Sprintf("item %d", i),
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Type:        core.Expense,
		})
	}
	return out
}

func TestRender(t *testing.T) {
	txs := []core.Transaction{
		{Date: core.NewDate(2024, 3, 5), Description: "Salary", Amount: decimal.RequireFromString("1234.5"), Type: core.Income},
		{Date: core.NewDate(2024, 3, 6), Description: "Coffee", Amount: decimal.RequireFromString("3.5"), Type: core.Expense},
	}

	got := Render(txs, "EUR")

	assert.Equal(t, []string{"Date", "Description", "Amount", "Type"}, got.Header)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"05/03/2024", "Salary", "€1234,50", "income"}, got.Rows[0].Cells())
	assert.Equal(t, []string{"06/03/2024", "Coffee", "€3,50", "expense"}, got.Rows[1].Cells())
	assert.True(t, got.Rows[1].Negative)
}

func TestRenderIsIdempotent(t *testing.T) {
	txs := transactions(3)
	assert.Equal(t, Render(txs, "USD"), Render(txs, "USD"))
}

func TestRenderEmpty(t *testing.T) {
	got := Render(nil, "USD")
	assert.Equal(t, 0, got.Len())
	assert.Len(t, got.Header, 4)
}

func TestRendererNotifiesSubscribers(t *testing.T) {
	r := NewRenderer()
	var seen []int
	r.Subscribe(func(rows int) { seen = append(seen, rows) })

	r.Render(transactions(2), "USD")
	r.Render(transactions(5), "USD")

	assert.Equal(t, []int{2, 5}, seen)
	assert.Equal(t, 5, r.Table().Len())
}

func TestScrollThreshold(t *testing.T) {
	cases := []struct {
		rows int
		want ScrollState
	}{
		{0, Compact},
		{1, Compact},
		{10, Compact},
		{11, Scrollable},
		{50, Scrollable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StateFor(tc.rows), "rows=%d", tc.rows)
	}
}

func TestScrollControllerFollowsRenderer(t *testing.T) {
	r := NewRenderer()
	c := NewScrollController(r)
	assert.Equal(t, Compact, c.State())

	r.Render(transactions(11), "USD")
	assert.Equal(t, Scrollable, c.State())

	r.Render(transactions(10), "USD")
	assert.Equal(t, Compact, c.State())
}

func TestScrollControllerInitialState(t *testing.T) {
	r := NewRenderer()
	r.Render(transactions(12), "USD")

	c := NewScrollController(r)
	assert.Equal(t, Scrollable, c.State())
	assert.Equal(t, "scrollable", c.State().String())
}

func TestMarkdown(t *testing.T) {
	txs := []core.Transaction{
		{Date: core.NewDate(2024, 3, 5), Description: "a|b", Amount: decimal.NewFromInt(2), Type: core.Income},
	}
	md := Markdown(Render(txs, "USD"))
	lines := strings.Split(strings.TrimSuffix(md, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "| Date | Description | Amount | Type |", lines[0])
	assert.Equal(t, `| 05/03/2024 | a\|b | $2.00 | income |`, lines[2])
}

func TestRenderTerminal(t *testing.T) {
	out, err := RenderTerminal(Render(transactions(1), "USD"), "$-1.00", "notty", 100)
	require.NoError(t, err)
	assert.Contains(t, out, "item 0")
	assert.Contains(t, out, "Balance")
}
