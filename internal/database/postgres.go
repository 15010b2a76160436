package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const roomColumns = `
	r.id, r.external_id, r.creator_id, c.username,
	r.opponent_id, o.username,
	r.creator_color, r.fen, r.is_completed, r.position_version, r.views,
	r.created_at, r.updated_at`

const roomJoins = `
	FROM rooms r
	JOIN accounts c ON r.creator_id = c.id
	LEFT JOIN accounts o ON r.opponent_id = o.id`

type PgChessRepository struct {
	conn *sql.DB
}

func NewPgChessRepository(dsn string) (*PgChessRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrateSchema(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &PgChessRepository{conn: db}, nil
}

func (db *PgChessRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *PgChessRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgChessRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, username, email, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgChessRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET username = $2, password_hash = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, username, email, created_at, updated_at",
		params.UserId,
		params.Username,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgChessRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChessRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChessRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	row := db.conn.QueryRow(
		"WITH new_room AS ("+
			"INSERT INTO rooms (external_id, creator_id, creator_color, fen, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING *"+
			") SELECT "+roomColumns+" FROM new_room r "+
			"JOIN accounts c ON r.creator_id = c.id "+
			"LEFT JOIN accounts o ON r.opponent_id = o.id",
		params.ExternalId,
		params.CreatorId,
		params.CreatorColor,
		params.Fen,
		time.Now().UTC(),
	)

	return scanRoom(row)
}

func (db *PgChessRepository) GetRoomByExternalId(externalId string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT "+roomColumns+roomJoins+" WHERE r.external_id = $1 LIMIT 1",
		externalId,
	)

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrNotFound
	}

	return room, err
}

func (db *PgChessRepository) ListRooms() ([]Room, error) {
	rows, err := db.conn.Query(
		"SELECT " + roomColumns + roomJoins + " ORDER BY r.created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}

		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// SetOpponent claims the open seat. The conditional update makes the seat
// assignment at-most-once even under concurrent claims.
func (db *PgChessRepository) SetOpponent(roomId, accountId int) (Room, error) {
	row := db.conn.QueryRow(
		"WITH updated AS ("+
			"UPDATE rooms SET opponent_id = $2, updated_at = $3 "+
			"WHERE id = $1 AND opponent_id IS NULL RETURNING *"+
			") SELECT "+roomColumns+" FROM updated r "+
			"JOIN accounts c ON r.creator_id = c.id "+
			"LEFT JOIN accounts o ON r.opponent_id = o.id",
		roomId,
		accountId,
		time.Now().UTC(),
	)

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrSeatTaken
	}

	return room, err
}

// UpdateRoomPosition commits a new position. The write succeeds only if the
// stored position_version still matches the version the move was computed
// against; a mismatch means another commit landed first and the caller must
// resync.
func (db *PgChessRepository) UpdateRoomPosition(params UpdatePositionParams) (Room, error) {
	row := db.conn.QueryRow(
		"WITH updated AS ("+
			"UPDATE rooms SET fen = $2, is_completed = $3, position_version = position_version + 1, updated_at = $4 "+
			"WHERE id = $1 AND position_version = $5 RETURNING *"+
			") SELECT "+roomColumns+" FROM updated r "+
			"JOIN accounts c ON r.creator_id = c.id "+
			"LEFT JOIN accounts o ON r.opponent_id = o.id",
		params.RoomId,
		params.Fen,
		params.IsCompleted,
		time.Now().UTC(),
		params.ExpectedVersion,
	)

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrVersionConflict
	}

	return room, err
}

// IncrementRoomViews bumps the view counter server-side and returns the new
// value, so concurrent opens never lose an update.
func (db *PgChessRepository) IncrementRoomViews(roomId int) (int, error) {
	row := db.conn.QueryRow(
		"UPDATE rooms SET views = views + 1 WHERE id = $1 RETURNING views",
		roomId,
	)

	var views int
	err := row.Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}

	return views, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (Room, error) {
	var room Room
	err := row.Scan(
		&room.Id,
		&room.ExternalId,
		&room.CreatorId,
		&room.CreatorUsername,
		&room.OpponentId,
		&room.OpponentUsername,
		&room.CreatorColor,
		&room.Fen,
		&room.IsCompleted,
		&room.PositionVersion,
		&room.Views,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	return room, err
}
