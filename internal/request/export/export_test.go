package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"procuration/internal/kv"
	"procuration/internal/request/models"
	"procuration/internal/request/store"
)

type ExportSuite struct {
	suite.Suite
	ctx     context.Context
	kv      *kv.MemoryStore
	records *store.Store
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportSuite))
}

func (s *ExportSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = kv.NewMemory()
	s.records = store.New(s.kv)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.records.RegisterRequester(s.ctx, "pending@example.fr")
	s.Require().NoError(err)
	s.Require().NoError(s.records.MarkPending(s.ctx, "pending@example.fr"))

	_, err = s.records.RegisterRequester(s.ctx, "chosen@example.fr")
	s.Require().NoError(err)
	s.Require().NoError(s.records.MarkVerified(s.ctx, "chosen@example.fr", at))
	_, err = s.records.IncrementChanges(s.ctx, "chosen@example.fr")
	s.Require().NoError(err)
	s.Require().NoError(s.records.SaveLocality(s.ctx, "chosen@example.fr", "75056", "Paris (75, Paris, Île-de-France)", at))
}

func (s *ExportSuite) TestCSV() {
	var buf bytes.Buffer
	n, err := Write(s.ctx, s.records, &buf, Options{Format: FormatCSV})
	s.Require().NoError(err)
	s.Equal(2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal(csvHeader, rows[0])

	byEmail := map[string][]string{}
	for _, row := range rows[1:] {
		byEmail[row[0]] = row
	}
	s.Equal("submitted", byEmail["pending@example.fr"][1])
	s.Equal("pending", byEmail["pending@example.fr"][2])

	chosen := byEmail["chosen@example.fr"]
	s.Equal("locality_chosen", chosen[1])
	s.Equal("2024-05-01T10:00:00Z", chosen[3])
	s.Equal("75056", chosen[4])
	s.Equal("Paris (75, Paris, Île-de-France)", chosen[5])
	s.Equal("1", chosen[6])
}

func (s *ExportSuite) TestJSONWithStateFilter() {
	var buf bytes.Buffer
	n, err := Write(s.ctx, s.records, &buf, Options{Format: FormatJSON, State: models.StateLocalityChosen})
	s.Require().NoError(err)
	s.Equal(1, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	s.Require().Len(lines, 1)

	var row Row
	s.Require().NoError(json.Unmarshal([]byte(lines[0]), &row))
	s.Equal("chosen@example.fr", row.Email)
	s.Equal(models.StateLocalityChosen, row.State)
	s.Equal(int64(1), row.Changes)
	s.False(row.Confirmed)
}

func (s *ExportSuite) TestParse() {
	s.Run("formats", func() {
		f, err := ParseFormat("json")
		s.Require().NoError(err)
		s.Equal(FormatJSON, f)

		_, err = ParseFormat("xml")
		s.Error(err)
	})

	s.Run("states", func() {
		st, err := ParseState("matched")
		s.Require().NoError(err)
		s.Equal(models.StateMatched, st)

		st, err = ParseState("")
		s.Require().NoError(err)
		s.Empty(st)

		_, err = ParseState("lost")
		s.Error(err)
	})
}
