package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
	"SigPull/pkg/util"
)

// Schema statements for the signal store. Mutations (cancel, update)
// are modelled as a status column plus ALTER UPDATE; ClickHouse rewrites
// parts asynchronously which is fine for an append-heavy signal log.
func Schema(database, table string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			message_id   String,
			channel      String,
			instrument   String,
			direction    String,
			limits       Array(Float64),
			stop_loss    Float64,
			expiry_type  String,
			keywords     Array(String),
			raw_text     String,
			parse_method String,
			scalp        UInt8,
			status       String DEFAULT 'active',
			created_at   DateTime DEFAULT now(),
			expires_at   DateTime
		) ENGINE = MergeTree()
		ORDER BY (channel, created_at)
		TTL created_at + INTERVAL 90 DAY`, database, table),
	}
}

// ClickHouseSignalStore implements SignalStore on ClickHouse.
type ClickHouseSignalStore struct {
	db     *sql.DB
	table  string
	closer func() error
}

func NewClickHouseSignalStore(db *sql.DB, table string, closer func() error) drepo.SignalStore {
	return &ClickHouseSignalStore{db: db, table: table, closer: closer}
}

func (s *ClickHouseSignalStore) Save(ctx context.Context, messageID string, sig *models.ParsedSignal) error {
	if sig == nil {
		return fmt.Errorf("nil signal")
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(message_id, channel, instrument, direction, limits, stop_loss, expiry_type, keywords, raw_text, parse_method, scalp, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	scalp := uint8(0)
	if sig.Scalp {
		scalp = 1
	}
	keywords := sig.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, q,
		messageID,
		sig.ChannelName,
		sig.Instrument,
		string(sig.Direction),
		sig.Limits,
		sig.StopLoss,
		string(sig.ExpiryType),
		keywords,
		sig.RawText,
		sig.ParseMethod,
		scalp,
		"active",
		now,
		expiryDeadline(sig.ExpiryType, now),
	)
	if err != nil {
		return fmt.Errorf("save signal %s: %w", messageID, err)
	}
	return nil
}

// expiryDeadline maps an expiry kind onto a concrete timestamp so the
// store can filter expired signals with a plain comparison. No-expiry
// signals get a far-future sentinel.
func expiryDeadline(e models.ExpiryType, now time.Time) time.Time {
	switch e {
	case models.ExpiryWeekEnd:
		return util.EndOfWeek(now)
	case models.ExpiryMonthEnd:
		return util.EndOfMonth(now)
	case models.ExpiryNone:
		return now.AddDate(10, 0, 0)
	default:
		return util.EndOfDay(now)
	}
}

func (s *ClickHouseSignalStore) Recent(ctx context.Context, channel string, since time.Time, limit int) ([]*models.ParsedSignal, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	filter := ""
	args := []interface{}{channel}
	if !since.IsZero() {
		filter = " AND created_at >= ?"
		args = append(args, since.UTC())
	}
	q := fmt.Sprintf(`SELECT instrument, direction, limits, stop_loss, expiry_type, keywords, raw_text, parse_method, channel, scalp
		FROM %s WHERE channel = ? AND status = 'active' AND expires_at > now()%s
		ORDER BY created_at DESC LIMIT %d`, s.table, filter, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("recent signals: %w", err)
	}
	defer rows.Close()

	var out []*models.ParsedSignal
	for rows.Next() {
		var (
			sig       models.ParsedSignal
			direction string
			expiry    string
			scalp     uint8
		)
		if err := rows.Scan(&sig.Instrument, &direction, &sig.Limits, &sig.StopLoss,
			&expiry, &sig.Keywords, &sig.RawText, &sig.ParseMethod, &sig.ChannelName, &scalp); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Direction = models.Direction(direction)
		sig.ExpiryType = models.ExpiryType(expiry)
		sig.Scalp = scalp == 1
		out = append(out, &sig)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStore) OpenInstruments(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`SELECT DISTINCT instrument FROM %s WHERE status = 'active' AND expires_at > now()`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("open instruments: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStore) CancelByMessageID(ctx context.Context, messageID string) error {
	q := fmt.Sprintf(`ALTER TABLE %s UPDATE status = 'cancelled' WHERE message_id = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, q, messageID); err != nil {
		return fmt.Errorf("cancel signal %s: %w", messageID, err)
	}
	return nil
}

// UpdateByMessageID replaces the signal for an edited message: the old
// row is cancelled and the re-parsed signal inserted fresh.
func (s *ClickHouseSignalStore) UpdateByMessageID(ctx context.Context, messageID string, sig *models.ParsedSignal) error {
	if err := s.CancelByMessageID(ctx, messageID); err != nil {
		return err
	}
	return s.Save(ctx, messageID, sig)
}

func (s *ClickHouseSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSignalStore) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
