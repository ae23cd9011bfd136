package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"dispatch-portal/internal/models"
)

type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the dispatch tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS agents (
		id VARCHAR(32) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		preferred_sector VARCHAR(50),
		assignments_total INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS units (
		id VARCHAR(32) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		address TEXT,
		sector VARCHAR(50),

		rooms INTEGER NOT NULL DEFAULT 0,
		area_m2 DECIMAL(10, 2) NOT NULL DEFAULT 0,
		distance_km DECIMAL(10, 2) NOT NULL DEFAULT 0,
		difficulty INTEGER NOT NULL DEFAULT 1,

		latitude DECIMAL(10, 7),
		longitude DECIMAL(10, 7),

		agent_id VARCHAR(32) REFERENCES agents(id),
		status VARCHAR(20) NOT NULL DEFAULT 'available',

		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS assignment_records (
		id SERIAL PRIMARY KEY,
		unit_id VARCHAR(32) NOT NULL,
		agent_id VARCHAR(32) NOT NULL,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP,
		balance_score DECIMAL(12, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_units_status ON units(status);
	CREATE INDEX IF NOT EXISTS idx_units_sector ON units(sector);
	CREATE INDEX IF NOT EXISTS idx_units_agent_id ON units(agent_id);
	CREATE INDEX IF NOT EXISTS idx_assignment_records_unit ON assignment_records(unit_id);
	CREATE INDEX IF NOT EXISTS idx_assignment_records_open ON assignment_records(unit_id) WHERE ended_at IS NULL;
	`
	_, err := db.conn.Exec(query)
	return err
}

const unitColumns = `id, name, address, sector, rooms, area_m2, distance_km, difficulty,
		latitude, longitude, agent_id, status, created_at, updated_at`

func scanUnit(scanner interface{ Scan(...interface{}) error }) (models.Unit, error) {
	var u models.Unit
	var address, sector sql.NullString
	err := scanner.Scan(
		&u.ID, &u.Name, &address, &sector,
		&u.Rooms, &u.AreaM2, &u.DistanceKm, &u.Difficulty,
		&u.Latitude, &u.Longitude, &u.AgentID, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	u.Address = address.String
	u.Sector = sector.String
	return u, err
}

// FetchUnits retrieves units matching the filter
func (db *DB) FetchUnits(filter UnitFilter) ([]models.Unit, error) {
	query := "SELECT " + unitColumns + " FROM units"
	where := ""
	args := []interface{}{}
	idx := 1

	addCond := func(cond string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, idx)
		args = append(args, value)
		idx++
	}

	if filter.Status != "" {
		addCond("status = $%d", filter.Status)
	}
	if filter.Sector != "" {
		addCond("sector = $%d", filter.Sector)
	}
	if filter.AgentID != "" {
		addCond("agent_id = $%d", filter.AgentID)
	}

	query += where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// FetchAgents retrieves the full agent roster in a stable order
func (db *DB) FetchAgents() ([]models.Agent, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, email, COALESCE(preferred_sector, ''), assignments_total, created_at, updated_at
		FROM agents
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		var a models.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PreferredSector,
			&a.AssignmentsTotal, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// GetUnitByID retrieves a unit by ID
func (db *DB) GetUnitByID(id string) (*models.Unit, error) {
	row := db.conn.QueryRow("SELECT "+unitColumns+" FROM units WHERE id = $1", id)
	u, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUnit inserts or updates a unit (assignment state is not touched)
func (db *DB) SaveUnit(u *models.Unit) error {
	if u.ID == "" {
		u.ID = generateMD5(fmt.Sprintf("%s|%s|%d", u.Name, u.Address, time.Now().UnixNano()))
	}
	if u.Status == "" {
		u.Status = models.UnitStatusAvailable
	}

	query := `
	INSERT INTO units (id, name, address, sector, rooms, area_m2, distance_km, difficulty,
		latitude, longitude, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		sector = EXCLUDED.sector,
		rooms = EXCLUDED.rooms,
		area_m2 = EXCLUDED.area_m2,
		distance_km = EXCLUDED.distance_km,
		difficulty = EXCLUDED.difficulty,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		updated_at = NOW()
	`
	_, err := db.conn.Exec(query,
		u.ID, u.Name, u.Address, u.Sector, u.Rooms, u.AreaM2, u.DistanceKm, u.Difficulty,
		u.Latitude, u.Longitude, u.Status)
	return err
}

// SaveAgent inserts or updates an agent
func (db *DB) SaveAgent(a *models.Agent) error {
	if a.ID == "" {
		a.ID = generateMD5(a.Email)
	}

	query := `
	INSERT INTO agents (id, name, email, preferred_sector, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		preferred_sector = EXCLUDED.preferred_sector,
		updated_at = NOW()
	`
	_, err := db.conn.Exec(query, a.ID, a.Name, a.Email, a.PreferredSector)
	return err
}

// CommitAssignment applies one pairing (or an unassignment) transactionally
func (db *DB) CommitAssignment(unitID string, agentID *string, balanceScore float64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM units WHERE id = $1)", unitID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrUnitNotFound
	}

	now := time.Now()

	if _, err := tx.Exec(
		"UPDATE assignment_records SET ended_at = $1 WHERE unit_id = $2 AND ended_at IS NULL",
		now, unitID); err != nil {
		return err
	}

	if agentID == nil {
		if _, err := tx.Exec(
			"UPDATE units SET agent_id = NULL, status = $1, updated_at = $2 WHERE id = $3",
			models.UnitStatusAvailable, now, unitID); err != nil {
			return err
		}
		return tx.Commit()
	}

	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM agents WHERE id = $1)", *agentID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrAgentNotFound
	}

	if _, err := tx.Exec(
		"UPDATE units SET agent_id = $1, status = $2, updated_at = $3 WHERE id = $4",
		*agentID, models.UnitStatusAssigned, now, unitID); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO assignment_records (unit_id, agent_id, started_at, balance_score, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		unitID, *agentID, now, balanceScore, now); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"UPDATE agents SET assignments_total = assignments_total + 1, updated_at = $1 WHERE id = $2",
		now, *agentID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetAssignedUnits retrieves the units currently held by an agent
func (db *DB) GetAssignedUnits(agentID string) ([]models.Unit, error) {
	return db.FetchUnits(UnitFilter{AgentID: agentID})
}
