package steps

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/stretchr/testify/assert"
)

// asserter captures the first testify failure so a step can return it as an error
type asserter struct {
	err error
}

func (a *asserter) Errorf(format string, args ...interface{}) {
	if a.err == nil {
		a.err = fmt.Errorf(format, args...)
	}
}

// assertExpectedAndActual runs a testify comparison and returns its failure, if any
func assertExpectedAndActual(fn func(assert.TestingT, interface{}, interface{}, ...interface{}) bool, expected, actual interface{}, msgAndArgs ...interface{}) error {
	var a asserter
	fn(&a, expected, actual, msgAndArgs...)
	return a.err
}

// assertInDelta compares floats with a tolerance and returns the failure, if any
func assertInDelta(expected, actual float64, msgAndArgs ...interface{}) error {
	var a asserter
	assert.InDelta(&a, expected, actual, 1e-9, msgAndArgs...)
	return a.err
}

// getCellValueFromTable gets a cell value from a table row by column name
// It uses the first row (table.Rows[0]) as the header to find the column index
func getCellValueFromTable(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}

	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}
	return ""
}

func parseFloatCell(table *godog.Table, row *messages.PickleTableRow, columnName string) (float64, error) {
	raw := getCellValueFromTable(table, row, columnName)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", columnName, err)
	}
	return v, nil
}

// parseMask turns "T,T,F" into a mask
func parseMask(raw string) ([]bool, error) {
	var mask []bool
	for _, flag := range strings.Split(raw, ",") {
		switch strings.TrimSpace(flag) {
		case "T":
			mask = append(mask, true)
		case "F":
			mask = append(mask, false)
		default:
			return nil, fmt.Errorf("invalid mask flag %q", flag)
		}
	}
	return mask, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
