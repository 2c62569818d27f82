package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/bill-extraction/dto"
)

func TestIsNumericToken(t *testing.T) {
	for _, tok := range []string{"0", "2", "10.00", "007", "1234.5"} {
		assert.True(t, IsNumericToken(tok), tok)
	}
	for _, tok := range []string{"", "1.", ".5", "-3", "1,000", "$20", "2x", "1.2.3", "12/05/2024"} {
		assert.False(t, IsNumericToken(tok), tok)
	}
}

func TestIsDateToken(t *testing.T) {
	for _, tok := range []string{"1/2/2024", "12/05/2024", "31/12/1999"} {
		assert.True(t, IsDateToken(tok), tok)
	}
	for _, tok := range []string{"12/05/24", "2024/05/12", "123/1/2024", "12-05-2024", "on 1/2/2024"} {
		assert.False(t, IsDateToken(tok), tok)
	}
}

func TestParseLineItem(t *testing.T) {
	item, ok := ParseLineItem("Widget A 2 10.00 20.00")

	require.True(t, ok)
	assert.Equal(t, dto.LineItem{Name: "Widget A", Quantity: 2, Rate: 10, Amount: 20}, item)
}

func TestParseLineItemRecomputesAmount(t *testing.T) {
	item, ok := ParseLineItem("Paracetamol 500mg strip 3 12.50 99.99")

	require.True(t, ok)
	assert.Equal(t, "Paracetamol 500mg strip", item.Name)
	assert.Equal(t, 3.0, item.Quantity)
	assert.Equal(t, 12.5, item.Rate)
	assert.Equal(t, item.Quantity*item.Rate, item.Amount)
}

func TestParseLineItemUsesLastThreeNumbers(t *testing.T) {
	item, ok := ParseLineItem("Bolt 8 pack 4 2.5 10.0")

	require.True(t, ok)
	assert.Equal(t, "Bolt pack", item.Name)
	assert.Equal(t, 4.0, item.Quantity)
	assert.Equal(t, 2.5, item.Rate)
	assert.Equal(t, 10.0, item.Amount)
}

func TestParseLineItemDropsDates(t *testing.T) {
	item, ok := ParseLineItem("12/05/2024 Consultation 1 500 500")

	require.True(t, ok)
	assert.Equal(t, "Consultation", item.Name)
	assert.Equal(t, 500.0, item.Amount)
}

func TestParseLineItemRejects(t *testing.T) {
	cases := map[string]string{
		"too few tokens":         "Widget 2 10",
		"two numbers":            "Widget A 2 10.00",
		"currency noise":         "Widget A 2 $10.00 $20.00",
		"grand total":            "Grand Total 100.00",
		"subtotal any case":      "SubTOTAL 1 100.00 100.00",
		"numbers only":           "1 2 3 4",
		"dates and numbers only": "01/02/2024 1 2 3",
		"empty":                  "",
	}
	for name, line := range cases {
		_, ok := ParseLineItem(line)
		assert.False(t, ok, name)
	}
}

func TestParseLineItemAmountIsQuantityTimesRate(t *testing.T) {
	lines := []string{
		"Widget A 2 10.00 20.00",
		"Paracetamol 500mg strip 3 12.50 99.99",
		"Bolt 8 pack 4 2.5 10.0",
		"12/05/2024 Consultation 1 500 500",
		"Widget 2 10",
		"Grand Total 100.00",
		"SubTOTAL 1 100.00 100.00",
		"1 2 3 4",
		"Item 7 1.1 0",
	}
	for _, qty := range []string{"0", "1", "3", "0.5", "12"} {
		for _, rate := range []string{"0", "0.10", "1.5", "19.99", "250"} {
			lines = append(lines, fmt.Sprintf("Generated item %s %s 999.99", qty, rate))
		}
	}

	accepted := 0
	for _, line := range lines {
		item, ok := ParseLineItem(line)
		if !ok {
			continue
		}
		accepted++
		assert.Equal(t, item.Quantity*item.Rate, item.Amount, line)
	}
	assert.Equal(t, 30, accepted)
}

func TestParseLineItemsFromTextKeepsOrder(t *testing.T) {
	lines := []string{
		"INVOICE #123",
		"Widget A 2 10.00 20.00",
		"Grand Total 100.00",
		"Bolt 5 1.50 7.50",
		"Total 2 10 20",
	}

	items := ParseLineItemsFromText(lines)

	require.Len(t, items, 2)
	assert.Equal(t, "Widget A", items[0].Name)
	assert.Equal(t, "Bolt", items[1].Name)
	assert.Equal(t, 7.5, items[1].Amount)
}

func TestParseLineItemsFromTextEmpty(t *testing.T) {
	items := ParseLineItemsFromText(nil)

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSplitTextLines(t *testing.T) {
	lines := SplitTextLines("  Widget A 2 10 20 \r\n\n\tBolt 5 1.5 7.5\n   \n")

	assert.Equal(t, []string{"Widget A 2 10 20", "Bolt 5 1.5 7.5"}, lines)
}
