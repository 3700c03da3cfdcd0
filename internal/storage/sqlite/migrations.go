package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database.
// These run on startup to ensure tables exist.
// IMPORTANT: profiles and categories must be created BEFORE the tables
// referencing them via foreign keys.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    unit TEXT NOT NULL DEFAULT '',
    price REAL NOT NULL DEFAULT 0,
    currency_code TEXT NOT NULL DEFAULT 'EUR',
    category_id TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS shopping_lists (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 1,
    managed_by_profile_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (managed_by_profile_id) REFERENCES profiles(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id TEXT PRIMARY KEY,
    list_id TEXT NOT NULL,
    created_by_profile_id TEXT,
    ordered_by_name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open',
    total_amount REAL NOT NULL DEFAULT 0,
    currency_code TEXT NOT NULL DEFAULT 'EUR',
    purchased_at INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (list_id) REFERENCES shopping_lists(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS list_items (
    id TEXT PRIMARY KEY,
    list_id TEXT NOT NULL,
    product_id TEXT NOT NULL,
    order_id TEXT,
    quantity INTEGER NOT NULL DEFAULT 1,
    note TEXT NOT NULL DEFAULT '',
    added_at INTEGER NOT NULL,
    is_bought INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (list_id) REFERENCES shopping_lists(id) ON DELETE CASCADE,
    FOREIGN KEY (product_id) REFERENCES products(id),
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS billing_flags (
    id TEXT PRIMARY KEY,
    list_id TEXT NOT NULL,
    payer_name TEXT NOT NULL,
    is_paid INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL,
    UNIQUE (list_id, payer_name),
    FOREIGN KEY (list_id) REFERENCES shopping_lists(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS debts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    amount REAL NOT NULL DEFAULT 0,
    list_id TEXT,
    payer_name TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_list_items_list_id ON list_items(list_id);
CREATE INDEX IF NOT EXISTS idx_list_items_order_id ON list_items(order_id);
CREATE INDEX IF NOT EXISTS idx_orders_list_id ON orders(list_id);
CREATE INDEX IF NOT EXISTS idx_billing_flags_list_id ON billing_flags(list_id);

CREATE VIEW IF NOT EXISTS v_list_items_with_order AS
SELECT
    li.id AS list_item_id,
    li.list_id AS list_id,
    li.product_id AS product_id,
    li.quantity AS quantity,
    li.note AS note,
    li.added_at AS added_at,
    li.is_bought AS is_bought,
    p.name AS product_name,
    p.unit AS unit,
    p.price AS price,
    p.currency_code AS currency_code,
    COALESCE(c.name, 'Sonstiges') AS category_name,
    COALESCE(o.ordered_by_name, '') AS ordered_by_name
FROM list_items li
JOIN products p ON p.id = li.product_id
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN orders o ON o.id = li.order_id;
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
