package sales

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	productsDDL := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  name TEXT NOT NULL,
  serial_number TEXT NOT NULL UNIQUE,
  model_number TEXT NOT NULL,
  purchase_price NUMERIC NOT NULL,
  manufacture_date DATE NOT NULL,
  warranty_period_months INTEGER NOT NULL,
  assigned_distributor_id TEXT,
  image_media_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	salesDDL := `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  distributor_id TEXT,
  customer_name TEXT NOT NULL,
  customer_email TEXT,
  customer_phone TEXT,
  sale_date DATE NOT NULL,
  warranty_start_date DATE NOT NULL,
  warranty_end_date DATE NOT NULL,
  created_at DATETIME
);`

	require.NoError(t, db.Exec(productsDDL).Error)
	require.NoError(t, db.Exec(salesDDL).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM sales")
		db.Exec("DELETE FROM products")
	})

	return db
}
