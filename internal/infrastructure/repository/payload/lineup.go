package payload

import (
	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

// entryRecord is the persisted shape of a lineup entry. Unlike the API
// shape it keeps the assembly confidence.
type entryRecord struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	IsVerified  bool   `json:"isVerified"`
	IsProjected bool   `json:"isProjected"`
	Confidence  string `json:"confidence,omitempty"`
}

func EncodeLineup(l lineup.Lineup) ([]byte, error) {
	records := make([]entryRecord, 0, len(l))
	for _, entry := range l {
		records = append(records, entryRecord{
			Name:        entry.Name,
			Position:    string(entry.Position),
			IsVerified:  entry.IsVerified,
			IsProjected: entry.IsProjected,
			Confidence:  string(entry.Confidence),
		})
	}
	raw, err := sonic.Marshal(records)
	if err != nil {
		return nil, crerr.Wrap(err, "encode lineup payload")
	}
	return raw, nil
}

// DecodeLineup rejects payloads that do not hold a complete lineup so a
// corrupted row is read as a miss instead of being served.
func DecodeLineup(raw []byte) (lineup.Lineup, error) {
	var records []entryRecord
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return nil, crerr.Wrap(err, "decode lineup payload")
	}

	out := make(lineup.Lineup, 0, len(records))
	for _, record := range records {
		out = append(out, lineup.Entry{
			Name:        record.Name,
			Position:    lineup.Position(record.Position),
			IsVerified:  record.IsVerified,
			IsProjected: record.IsProjected,
			Confidence:  lineup.Confidence(record.Confidence),
		})
	}
	if !out.Complete() {
		return nil, crerr.Newf("decode lineup payload: %d entries do not form a complete lineup", len(out))
	}
	return out, nil
}
