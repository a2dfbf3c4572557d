package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/marketbay/auction-engine/internal/domain"
)

// PostgresStore persists auction records, their bid ledger and their
// offer set in Postgres. Save rewrites the auction row and upserts the
// lanes inside one transaction; the engine's per-auction lock makes
// the read-modify-write safe.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}

const auctionColumns = `
	id, title, auction_type, start_price, current_price, reserve_price,
	buy_now_price, bid_increment, bid_count, status, start_time, end_time,
	seller_id, winner_id, final_price, allow_offers, created_at, updated_at`

func (p *PostgresStore) Create(ctx context.Context, a *domain.Auction) error {
	const q = `
		INSERT INTO auctions (` + auctionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18);
	`
	_, err := p.pool.Exec(ctx, q,
		a.ID, a.Title, a.Type, a.StartPrice, a.CurrentPrice, nullDecimal(a.ReservePrice),
		nullDecimal(a.BuyNowPrice), a.BidIncrement, a.BidCount, a.Status, a.StartTime, a.EndTime,
		a.SellerID, a.WinnerID, nullDecimal(a.FinalPrice), a.AllowOffers, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	const q = `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1;`

	a, err := scanAuction(p.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := p.loadLanes(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (p *PostgresStore) GetByOffer(ctx context.Context, offerID uuid.UUID) (*domain.Auction, error) {
	const q = `SELECT auction_id FROM offers WHERE id = $1;`

	var auctionID uuid.UUID
	if err := p.pool.QueryRow(ctx, q, offerID).Scan(&auctionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p.Get(ctx, auctionID)
}

func (p *PostgresStore) Save(ctx context.Context, a *domain.Auction) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		const q = `
			UPDATE auctions SET
				title = $2, current_price = $3, bid_count = $4, status = $5,
				winner_id = $6, final_price = $7, updated_at = $8
			WHERE id = $1;
		`
		tag, err := tx.Exec(ctx, q,
			a.ID, a.Title, a.CurrentPrice, a.BidCount, a.Status,
			a.WinnerID, nullDecimal(a.FinalPrice), a.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		// Bids are immutable: insert-only, conflicts ignored.
		const insBid = `
			INSERT INTO bids (id, auction_id, bidder_id, amount, created_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (id) DO NOTHING;
		`
		for i := range a.Bids {
			b := &a.Bids[i]
			if _, err := tx.Exec(ctx, insBid, b.ID, b.AuctionID, b.BidderID, b.Amount, b.CreatedAt); err != nil {
				return err
			}
		}

		// Offers may flip status after creation, nothing else.
		const upsertOffer = `
			INSERT INTO offers (id, auction_id, buyer_id, amount, message, status, created_at, expires_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status;
		`
		for i := range a.Offers {
			o := &a.Offers[i]
			if _, err := tx.Exec(ctx, upsertOffer,
				o.ID, o.AuctionID, o.BuyerID, o.Amount, o.Message, o.Status, o.CreatedAt, o.ExpiresAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PostgresStore) List(ctx context.Context, f Filter) ([]*domain.Auction, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Statuses) > 0 {
		ss := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			ss[i] = string(s)
		}
		where = append(where, "status = ANY("+arg(ss)+")")
	}
	if f.SellerID != uuid.Nil {
		where = append(where, "seller_id = "+arg(f.SellerID))
	}
	if f.StartDue != nil {
		where = append(where, "start_time <= "+arg(*f.StartDue))
	}
	if f.EndDue != nil {
		where = append(where, "end_time <= "+arg(*f.EndDue))
	}

	q := `SELECT ` + auctionColumns + ` FROM auctions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"
	if f.Limit > 0 {
		q += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		q += " OFFSET " + arg(f.Offset)
	}

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range out {
		if err := p.loadLanes(ctx, a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *PostgresStore) loadLanes(ctx context.Context, a *domain.Auction) error {
	const qBids = `
		SELECT id, auction_id, bidder_id, amount, created_at
		FROM bids WHERE auction_id = $1 ORDER BY created_at;
	`
	rows, err := p.pool.Query(ctx, qBids, a.ID)
	if err != nil {
		return err
	}
	a.Bids = []domain.Bid{}
	for rows.Next() {
		var b domain.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		a.Bids = append(a.Bids, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const qOffers = `
		SELECT id, auction_id, buyer_id, amount, message, status, created_at, expires_at
		FROM offers WHERE auction_id = $1 ORDER BY created_at;
	`
	rows, err = p.pool.Query(ctx, qOffers, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	a.Offers = []domain.Offer{}
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.ID, &o.AuctionID, &o.BuyerID, &o.Amount, &o.Message, &o.Status, &o.CreatedAt, &o.ExpiresAt); err != nil {
			return err
		}
		a.Offers = append(a.Offers, o)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*domain.Auction, error) {
	var (
		a        domain.Auction
		reserve  decimal.NullDecimal
		buyNow   decimal.NullDecimal
		final    decimal.NullDecimal
		winnerID *uuid.UUID
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.Type, &a.StartPrice, &a.CurrentPrice, &reserve,
		&buyNow, &a.BidIncrement, &a.BidCount, &a.Status, &a.StartTime, &a.EndTime,
		&a.SellerID, &winnerID, &final, &a.AllowOffers, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reserve.Valid {
		a.ReservePrice = &reserve.Decimal
	}
	if buyNow.Valid {
		a.BuyNowPrice = &buyNow.Decimal
	}
	if final.Valid {
		a.FinalPrice = &final.Decimal
	}
	a.WinnerID = winnerID
	return &a, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
