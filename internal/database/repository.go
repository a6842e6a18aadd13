package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repository provides database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new database repository
func NewRepository(connectionString string, maxOpen, maxIdle, maxLifetimeMinutes int) (*Repository, error) {
	db, err := sqlx.Connect("pgx", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Duration(maxLifetimeMinutes) * time.Minute)

	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping verifies the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context, migrationSQL string) error {
	_, err := r.db.ExecContext(ctx, migrationSQL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// === Tracked wallet operations ===

// CreateWallet inserts a new tracked wallet
func (r *Repository) CreateWallet(ctx context.Context, wallet *TrackedWallet) error {
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}

	query := `
		INSERT INTO tracked_wallets (
			id, address, name, description, is_following, is_active,
			total_value, win_rate, total_trades, avg_trade_size, total_volume, open_positions
		) VALUES (
			:id, :address, :name, :description, :is_following, :is_active,
			:total_value, :win_rate, :total_trades, :avg_trade_size, :total_volume, :open_positions
		)
		RETURNING created_at, updated_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, wallet)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&wallet.CreatedAt, &wallet.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan wallet timestamps: %w", err)
		}
	}
	return rows.Err()
}

// GetWallet retrieves a tracked wallet by ID
func (r *Repository) GetWallet(ctx context.Context, id uuid.UUID) (*TrackedWallet, error) {
	var wallet TrackedWallet
	query := `SELECT * FROM tracked_wallets WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &wallet, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// GetWalletByAddress retrieves a tracked wallet by address
func (r *Repository) GetWalletByAddress(ctx context.Context, address string) (*TrackedWallet, error) {
	var wallet TrackedWallet
	query := `SELECT * FROM tracked_wallets WHERE lower(address) = lower($1) AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &wallet, query, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wallet %s: %w", address, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet by address: %w", err)
	}
	return &wallet, nil
}

// ListWallets returns non-deleted tracked wallets, most recently refreshed first
func (r *Repository) ListWallets(ctx context.Context) ([]TrackedWallet, error) {
	wallets := []TrackedWallet{}
	query := `
		SELECT * FROM tracked_wallets
		WHERE deleted_at IS NULL
		ORDER BY last_refreshed DESC NULLS LAST, created_at DESC
	`

	if err := r.db.SelectContext(ctx, &wallets, query); err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// UpdateWallet updates the editable fields of a tracked wallet
func (r *Repository) UpdateWallet(ctx context.Context, wallet *TrackedWallet) error {
	query := `
		UPDATE tracked_wallets
		SET name = :name,
		    description = :description,
		    is_following = :is_following,
		    is_active = :is_active,
		    updated_at = NOW()
		WHERE id = :id AND deleted_at IS NULL
	`

	result, err := r.db.NamedExecContext(ctx, query, wallet)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return requireRowAffected(result, wallet.ID.String())
}

// UpdateWalletStats stores the latest refreshed headline numbers
func (r *Repository) UpdateWalletStats(ctx context.Context, wallet *TrackedWallet) error {
	query := `
		UPDATE tracked_wallets
		SET total_value = :total_value,
		    win_rate = :win_rate,
		    total_trades = :total_trades,
		    avg_trade_size = :avg_trade_size,
		    total_volume = :total_volume,
		    open_positions = :open_positions,
		    last_refreshed = NOW(),
		    updated_at = NOW()
		WHERE id = :id AND deleted_at IS NULL
	`

	result, err := r.db.NamedExecContext(ctx, query, wallet)
	if err != nil {
		return fmt.Errorf("failed to update wallet stats: %w", err)
	}
	return requireRowAffected(result, wallet.ID.String())
}

// DeleteWallet soft-deletes a tracked wallet
func (r *Repository) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tracked_wallets
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	return requireRowAffected(result, id.String())
}

// === User wallet settings operations ===

// GetUserWalletSettings retrieves the settings row for a user
func (r *Repository) GetUserWalletSettings(ctx context.Context, userID string) (*UserWalletSettings, error) {
	var settings UserWalletSettings
	query := `SELECT * FROM user_wallet_settings WHERE user_id = $1`

	err := r.db.GetContext(ctx, &settings, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user wallet settings: %w", err)
	}
	return &settings, nil
}

// UpsertUserWalletSettings creates or updates the settings row for a user
func (r *Repository) UpsertUserWalletSettings(ctx context.Context, settings *UserWalletSettings) error {
	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}

	query := `
		INSERT INTO user_wallet_settings (
			id, user_id, wallet_address, max_trade_size, risk_percentage,
			max_open_positions, auto_copy_enabled, stop_loss_enabled, market_overrides
		) VALUES (
			:id, :user_id, :wallet_address, :max_trade_size, :risk_percentage,
			:max_open_positions, :auto_copy_enabled, :stop_loss_enabled, :market_overrides
		)
		ON CONFLICT (user_id) DO UPDATE
		SET wallet_address = EXCLUDED.wallet_address,
		    max_trade_size = EXCLUDED.max_trade_size,
		    risk_percentage = EXCLUDED.risk_percentage,
		    max_open_positions = EXCLUDED.max_open_positions,
		    auto_copy_enabled = EXCLUDED.auto_copy_enabled,
		    stop_loss_enabled = EXCLUDED.stop_loss_enabled,
		    market_overrides = EXCLUDED.market_overrides,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, settings)
	if err != nil {
		return fmt.Errorf("failed to upsert user wallet settings: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&settings.ID, &settings.CreatedAt, &settings.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan settings timestamps: %w", err)
		}
	}
	return rows.Err()
}

func requireRowAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("row %s: %w", id, ErrNotFound)
	}
	return nil
}
