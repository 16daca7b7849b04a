// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUserNotFound возвращается, если пользователь с указанным email не найден.
var (
	ErrUserNotFound = errors.New("user not found")
	// ErrInvoiceNotFound возвращается, если счёт с указанным идентификатором не найден.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrCustomerNotFound возвращается, если счёт ссылается на несуществующего клиента.
	ErrCustomerNotFound = errors.New("customer not found")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// GetUserByEmail возвращает пользователя по точному совпадению email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password, created_at FROM users WHERE email = $1`,
		email,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// CreateInvoice вставляет новый счёт. Нарушение внешнего ключа по клиенту
// транслируется в ErrCustomerNotFound.
func (r *PostgresRepository) CreateInvoice(ctx context.Context, customerID uuid.UUID, amountCents int64, status model.InvoiceStatus, date time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (customer_id, amount, status, date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		customerID, amountCents, string(status), date,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return uuid.Nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
		}
		return uuid.Nil, fmt.Errorf("insert invoice: %w", err)
	}
	return id, nil
}

// UpdateInvoice обновляет поля существующего счёта.
func (r *PostgresRepository) UpdateInvoice(ctx context.Context, id, customerID uuid.UUID, amountCents int64, status model.InvoiceStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE invoices
		 SET customer_id = $2, amount = $3, status = $4
		 WHERE id = $1`,
		id, customerID, amountCents, string(status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
		}
		return fmt.Errorf("update invoice: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// DeleteInvoice удаляет счёт по идентификатору.
func (r *PostgresRepository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM invoices WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// GetInvoiceByID возвращает счёт по идентификатору.
func (r *PostgresRepository) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, amount, status, date FROM invoices WHERE id = $1`,
		id,
	)

	var inv model.Invoice
	var status string
	err := row.Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &status, &inv.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Status = model.InvoiceStatus(status)

	return &inv, nil
}

// ListInvoices возвращает страницу счетов вместе с данными клиентов.
// Поисковая строка сопоставляется с именем и email клиента, суммой,
// датой и статусом счёта.
func (r *PostgresRepository) ListInvoices(ctx context.Context, query string, limit, offset int) ([]model.InvoiceRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT invoices.id, invoices.amount, invoices.status, invoices.date,
		        customers.name, customers.email, customers.image_url
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 WHERE
		   customers.name ILIKE $1 OR
		   customers.email ILIKE $1 OR
		   invoices.amount::text ILIKE $1 OR
		   invoices.date::text ILIKE $1 OR
		   invoices.status ILIKE $1
		 ORDER BY invoices.date DESC, invoices.id
		 LIMIT $2 OFFSET $3`,
		"%"+query+"%", limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select invoices: %w", err)
	}
	defer rows.Close()

	var res []model.InvoiceRow
	for rows.Next() {
		var (
			row    model.InvoiceRow
			status string
		)
		if err := rows.Scan(&row.ID, &row.Amount, &status, &row.Date,
			&row.CustomerName, &row.CustomerEmail, &row.ImageURL); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		row.Status = model.InvoiceStatus(status)
		res = append(res, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// CountInvoices возвращает общее число счетов, попадающих под поисковую строку.
func (r *PostgresRepository) CountInvoices(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 WHERE
		   customers.name ILIKE $1 OR
		   customers.email ILIKE $1 OR
		   invoices.amount::text ILIKE $1 OR
		   invoices.date::text ILIKE $1 OR
		   invoices.status ILIKE $1`,
		"%"+query+"%",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}

// LatestInvoices возвращает последние счета для главной страницы.
func (r *PostgresRepository) LatestInvoices(ctx context.Context, limit int) ([]model.InvoiceRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT invoices.id, invoices.amount, invoices.status, invoices.date,
		        customers.name, customers.email, customers.image_url
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 ORDER BY invoices.date DESC, invoices.id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select latest invoices: %w", err)
	}
	defer rows.Close()

	var res []model.InvoiceRow
	for rows.Next() {
		var (
			row    model.InvoiceRow
			status string
		)
		if err := rows.Scan(&row.ID, &row.Amount, &status, &row.Date,
			&row.CustomerName, &row.CustomerEmail, &row.ImageURL); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		row.Status = model.InvoiceStatus(status)
		res = append(res, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetCardData возвращает сводные показатели для карточек главной страницы.
func (r *PostgresRepository) GetCardData(ctx context.Context) (*model.CardData, error) {
	var data model.CardData

	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM invoices),
		   (SELECT COUNT(*) FROM customers),
		   (SELECT COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0) FROM invoices),
		   (SELECT COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0) FROM invoices)`,
	).Scan(&data.InvoiceCount, &data.CustomerCount, &data.PaidCents, &data.PendingCents)
	if err != nil {
		return nil, fmt.Errorf("card data: %w", err)
	}

	return &data, nil
}

// GetRevenue возвращает выручку по месяцам.
func (r *PostgresRepository) GetRevenue(ctx context.Context) ([]model.Revenue, error) {
	rows, err := r.pool.Query(ctx, `SELECT month, revenue FROM revenue`)
	if err != nil {
		return nil, fmt.Errorf("select revenue: %w", err)
	}
	defer rows.Close()

	var res []model.Revenue
	for rows.Next() {
		var rev model.Revenue
		if err := rows.Scan(&rev.Month, &rev.Revenue); err != nil {
			return nil, fmt.Errorf("scan revenue: %w", err)
		}
		res = append(res, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListCustomers возвращает клиентов для выпадающего списка формы счёта.
func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, image_url FROM customers ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var res []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListCustomerRows возвращает таблицу клиентов с итогами по их счетам.
func (r *PostgresRepository) ListCustomerRows(ctx context.Context, query string) ([]model.CustomerRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT customers.id, customers.name, customers.email, customers.image_url,
		        COUNT(invoices.id),
		        COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0)
		 FROM customers
		 LEFT JOIN invoices ON customers.id = invoices.customer_id
		 WHERE customers.name ILIKE $1 OR customers.email ILIKE $1
		 GROUP BY customers.id, customers.name, customers.email, customers.image_url
		 ORDER BY customers.name`,
		"%"+query+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("select customer rows: %w", err)
	}
	defer rows.Close()

	var res []model.CustomerRow
	for rows.Next() {
		var c model.CustomerRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL,
			&c.InvoiceCount, &c.PendingCents, &c.PaidCents); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
