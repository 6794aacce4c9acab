package segment

import (
	"strings"
)

// resolveTable turns buffered table rows into one or more table fragments.
// A table that fits within MaxFragments lines renders whole. Larger tables are
// split into chunks that each repeat the header and separator rows. Fewer than
// two usable lines, or a header without cells, resolves to nothing.
func resolveTable(rows []string, budget Budget, r Renderer) []Fragment {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row) != "" {
			lines = append(lines, row)
		}
	}
	if len(lines) < 2 {
		return nil
	}
	if len(parseTableRow(lines[0])) == 0 {
		return nil
	}

	header, separator, body := lines[0], lines[1], lines[2:]
	if len(lines) <= budget.MaxFragments || len(body) == 0 {
		return []Fragment{tableFragment(r.Table(lines))}
	}

	per := rowsPerChunk(body, budget)
	fragments := make([]Fragment, 0, (len(body)+per-1)/per)
	for start := 0; start < len(body); start += per {
		end := min(start+per, len(body))

		chunk := make([]string, 0, end-start+2)
		chunk = append(chunk, header, separator)
		chunk = append(chunk, body[start:end]...)

		fragments = append(fragments, tableFragment(r.Table(chunk)))
	}
	return fragments
}

// rowsPerChunk estimates how many content rows fit on one slide: the line
// budget minus the header and separator, capped by TableCharBudget divided by
// the average row length. Rows averaging under one character skip the cap.
func rowsPerChunk(rows []string, budget Budget) int {
	per := budget.MaxFragments - 2

	if len(rows) > 0 {
		total := 0
		for _, row := range rows {
			total += CountChars(row)
		}
		avg := float64(total) / float64(len(rows))
		if avg >= 1 {
			per = min(per, int(float64(budget.TableCharBudget)/avg))
		}
	}

	return max(per, 1)
}

// parseTableRow splits a row on the pipe delimiter, trims each cell, and drops
// empty leading and trailing cells.
func parseTableRow(line string) []string {
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	for len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func tableFragment(html string) Fragment {
	return Fragment{Kind: KindTable, Text: html, HTML: html}
}
