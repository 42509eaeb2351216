package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the database schema for the clinic agent
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	if err := db.createExtensions(ctx); err != nil {
		return fmt.Errorf("failed to create extensions: %w", err)
	}

	tables := []string{
		createPatientsTable,
		createDoctorsTable,
		createServicesTable,
		createAppointmentsTable,
		createSupportTicketsTable,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		createAppointmentsIndexes,
		createSupportTicketsIndexes,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	db.logger.Info("Database schema created successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func (db *DB) createExtensions(ctx context.Context) error {
	extensions := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS "btree_gist";`,
	}

	for _, ext := range extensions {
		if _, err := db.ExecContext(ctx, ext); err != nil {
			return fmt.Errorf("failed to create extension: %w", err)
		}
	}

	return nil
}

const createPatientsTable = `
CREATE TABLE IF NOT EXISTS patients (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL UNIQUE,
	phone VARCHAR(50),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createDoctorsTable = `
CREATE TABLE IF NOT EXISTS doctors (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL UNIQUE,
	specialization VARCHAR(255),
	available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createServicesTable = `
CREATE TABLE IF NOT EXISTS services (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	name VARCHAR(255) NOT NULL,
	description TEXT,
	price NUMERIC(10, 2) NOT NULL DEFAULT 0,
	duration_minutes INTEGER NOT NULL DEFAULT 30,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// The doctor exclusion constraint enforces non-overlapping appointment
// windows per doctor transactionally; the engine's conflict check is the
// fast path in front of it.
const createAppointmentsTable = `
CREATE TABLE IF NOT EXISTS appointments (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	patient_email VARCHAR(255) NOT NULL,
	patient_name VARCHAR(255) NOT NULL,
	doctor_id UUID NOT NULL REFERENCES doctors(id),
	doctor_name VARCHAR(255) NOT NULL,
	doctor_email VARCHAR(255) NOT NULL,
	service_id UUID NOT NULL REFERENCES services(id),
	service_name VARCHAR(255) NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	duration_minutes INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT appointments_doctor_no_overlap EXCLUDE USING gist (
		doctor_id WITH =,
		tstzrange(start_time, start_time + (duration_minutes * interval '1 minute')) WITH &&
	)
);`

const createSupportTicketsTable = `
CREATE TABLE IF NOT EXISTS support_tickets (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	conversation_id UUID NOT NULL,
	patient_id UUID REFERENCES patients(id),
	ticket_types TEXT[] NOT NULL,
	subject VARCHAR(255) NOT NULL,
	status VARCHAR(32) NOT NULL,
	conversation_history JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	resolved_at TIMESTAMPTZ
);`

const createAppointmentsIndexes = `
CREATE INDEX IF NOT EXISTS idx_appointments_patient_email ON appointments(patient_email);
CREATE INDEX IF NOT EXISTS idx_appointments_doctor_email ON appointments(doctor_email);
CREATE INDEX IF NOT EXISTS idx_appointments_start_time ON appointments(start_time);`

const createSupportTicketsIndexes = `
CREATE INDEX IF NOT EXISTS idx_support_tickets_conversation ON support_tickets(conversation_id);
CREATE INDEX IF NOT EXISTS idx_support_tickets_status ON support_tickets(status);`
