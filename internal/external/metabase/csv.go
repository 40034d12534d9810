package metabase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/novopnp/painel/internal/contracts"
)

// exportColumns is the number of columns in the card export:
// institution, unit, scope, status, count. The header row is positional,
// its labels vary with the card definition and are ignored.
const exportColumns = 5

// decodeRows parses the CSV export body into raw rows.
func decodeRows(r io.Reader) ([]contracts.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = exportColumns

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("export is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != exportColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", exportColumns, len(header))
	}

	var rows []contracts.RawRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		count, err := strconv.Atoi(strings.TrimSpace(record[4]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse count %q: %w", line, record[4], err)
		}

		rows = append(rows, contracts.RawRow{
			Institution: strings.TrimSpace(record[0]),
			Unit:        strings.TrimSpace(record[1]),
			Scope:       strings.TrimSpace(record[2]),
			Status:      strings.TrimSpace(record[3]),
			Count:       count,
		})
	}

	return rows, nil
}
