package stats

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/okian/arcade/internal/domain/types"
)

// schemaVersion 2 adds session ids and RFC 3339 timestamps. Documents
// without a version were written by the first release.
const schemaVersion = 2

// legacyLayout is the timezone-less ISO timestamp of unversioned documents.
const legacyLayout = "2006-01-02T15:04:05.999999999"

// document is the persisted unit: the log and everything derived from it
// are always written together.
type document struct {
	SchemaVersion int                            `json:"schema_version"`
	Games         map[string]types.GameAggregate `json:"games"`
	Sessions      []types.SessionRecord          `json:"sessions"`
	Performance   types.GlobalAggregate          `json:"performance"`
	LastUpdated   time.Time                      `json:"last_updated"`
}

func newDocument() document {
	return document{
		SchemaVersion: schemaVersion,
		Games:         map[string]types.GameAggregate{},
		Sessions:      []types.SessionRecord{},
	}
}

// clone copies the document deeply enough that appending a session and
// updating one game aggregate on the copy leaves the original intact.
func (d document) clone() document {
	c := d
	c.Games = maps.Clone(d.Games)
	if c.Games == nil {
		c.Games = map[string]types.GameAggregate{}
	}
	c.Sessions = d.Sessions[:len(d.Sessions):len(d.Sessions)]
	return c
}

// apply folds one session into the document.
func (d *document) apply(rec types.SessionRecord) {
	d.Sessions = append(d.Sessions, rec)
	g := d.Games[rec.GameID].Clone()
	g.Add(rec.GameName, rec.Score, rec.Duration)
	d.Games[rec.GameID] = g
	d.Performance.Add(rec.Duration)
}

// rebuild recomputes every aggregate by replaying the log.
func (d *document) rebuild() {
	sessions := d.Sessions
	d.Games = map[string]types.GameAggregate{}
	d.Sessions = make([]types.SessionRecord, 0, len(sessions))
	d.Performance = types.GlobalAggregate{}
	for _, s := range sessions {
		d.apply(s)
	}
}

// consistent reports whether the aggregates account for every logged session.
func (d document) consistent() bool {
	total := 0
	for _, g := range d.Games {
		total += g.TotalSessions
	}
	return total == len(d.Sessions) && d.Performance.TotalSessions == len(d.Sessions)
}

// wireSession accepts both timestamp formats found on disk.
type wireSession struct {
	ID         string  `json:"id"`
	GameID     string  `json:"game_id"`
	GameName   string  `json:"game_name"`
	Score      int     `json:"score"`
	Duration   float64 `json:"duration"`
	PlayerName string  `json:"player_name"`
	Timestamp  string  `json:"timestamp"`
	Date       string  `json:"date"`
}

type wireDocument struct {
	SchemaVersion int                            `json:"schema_version"`
	Games         map[string]types.GameAggregate `json:"games"`
	Sessions      []wireSession                  `json:"sessions"`
	Performance   types.GlobalAggregate          `json:"performance"`
	LastUpdated   string                         `json:"last_updated"`
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(legacyLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// decode parses a stored document. migrated is true when the content was
// upgraded or repaired and should be written back. Sessions whose timestamp
// cannot be parsed are dropped and counted in skipped; the aggregates are
// then rebuilt from the sessions that remain.
func decode(data []byte, loc *time.Location) (doc document, migrated bool, skipped int, err error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return document{}, false, 0, err
	}

	doc = newDocument()
	if w.Games != nil {
		doc.Games = w.Games
	}
	doc.Performance = w.Performance
	if w.LastUpdated != "" {
		if t, err := parseTimestamp(w.LastUpdated, loc); err == nil {
			doc.LastUpdated = t
		}
	}

	for _, ws := range w.Sessions {
		ts, err := parseTimestamp(ws.Timestamp, loc)
		if err != nil {
			skipped++
			continue
		}
		rec := types.SessionRecord{
			ID:         ws.ID,
			GameID:     ws.GameID,
			GameName:   ws.GameName,
			Score:      ws.Score,
			Duration:   ws.Duration,
			PlayerName: ws.PlayerName,
			Timestamp:  ts,
			Date:       ws.Date,
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
			migrated = true
		}
		if rec.Date == "" {
			rec.Date = ts.In(loc).Format(types.DateLayout)
			migrated = true
		}
		doc.Sessions = append(doc.Sessions, rec)
	}

	if w.SchemaVersion < schemaVersion {
		migrated = true
	}
	if skipped > 0 || (!doc.consistent() && len(doc.Sessions) > 0) {
		doc.rebuild()
		migrated = true
	}
	return doc, migrated, skipped, nil
}

func encode(doc document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
