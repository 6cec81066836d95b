package data

// Item ledger rows carry no foreign key to items: deleting an item keeps its audit trail.

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS locations (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    parent_id     BIGINT REFERENCES locations(id),
    location_type TEXT NOT NULL CHECK (location_type IN ('shelf', 'box', 'compartment')),
    description   TEXT,
    qr_code_id    TEXT UNIQUE,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_locations_parent_id ON locations(parent_id);

CREATE TABLE IF NOT EXISTS items (
    id             BIGSERIAL PRIMARY KEY,
    name           TEXT NOT NULL,
    category       TEXT,
    specifications TEXT,
    quantity       INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit           TEXT,
    location_id    BIGINT REFERENCES locations(id),
    min_quantity   INTEGER,
    notes          TEXT,
    image_path     TEXT,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_location_id ON items(location_id);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);

CREATE TABLE IF NOT EXISTS inventory_log (
    id              BIGSERIAL PRIMARY KEY,
    item_id         BIGINT NOT NULL,
    quantity_change INTEGER NOT NULL,
    quantity_after  INTEGER NOT NULL CHECK (quantity_after >= 0),
    operation_type  TEXT NOT NULL CHECK (operation_type IN ('add', 'remove', 'adjust')),
    source          TEXT NOT NULL DEFAULT 'manual',
    notes           TEXT,
    created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_log_item_id ON inventory_log(item_id);

CREATE TABLE IF NOT EXISTS sync_configs (
    id             BIGSERIAL PRIMARY KEY,
    sync_type      TEXT NOT NULL UNIQUE CHECK (sync_type IN ('webdav', 's3')),
    enabled        BOOLEAN NOT NULL DEFAULT TRUE,
    config         TEXT NOT NULL,
    last_sync_time TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS locations (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    parent_id     INTEGER REFERENCES locations(id),
    location_type TEXT NOT NULL CHECK (location_type IN ('shelf', 'box', 'compartment')),
    description   TEXT,
    qr_code_id    TEXT UNIQUE,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_locations_parent_id ON locations(parent_id);

CREATE TABLE IF NOT EXISTS items (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL,
    category       TEXT,
    specifications TEXT,
    quantity       INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit           TEXT,
    location_id    INTEGER REFERENCES locations(id),
    min_quantity   INTEGER,
    notes          TEXT,
    image_path     TEXT,
    created_at     DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_location_id ON items(location_id);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);

CREATE TABLE IF NOT EXISTS inventory_log (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id         INTEGER NOT NULL,
    quantity_change INTEGER NOT NULL,
    quantity_after  INTEGER NOT NULL CHECK (quantity_after >= 0),
    operation_type  TEXT NOT NULL CHECK (operation_type IN ('add', 'remove', 'adjust')),
    source          TEXT NOT NULL DEFAULT 'manual',
    notes           TEXT,
    created_at      DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_log_item_id ON inventory_log(item_id);

CREATE TABLE IF NOT EXISTS sync_configs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    sync_type      TEXT NOT NULL UNIQUE CHECK (sync_type IN ('webdav', 's3')),
    enabled        INTEGER NOT NULL DEFAULT 1,
    config         TEXT NOT NULL,
    last_sync_time DATETIME,
    created_at     DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL
);
`
