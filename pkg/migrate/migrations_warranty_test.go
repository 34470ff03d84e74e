package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coverline/coverline-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestProductsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"warranty_period_months INTEGER NOT NULL CHECK (warranty_period_months >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_serial_number",
		"CREATE INDEX IF NOT EXISTS idx_products_company",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSalesMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_sales_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS sales",
		"CREATE INDEX IF NOT EXISTS idx_sales_product",
		"CHECK (warranty_end_date >= warranty_start_date)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationDefinesRoleEnum(t *testing.T) {
	content := readMigration(t, "*_create_users_table.sql")

	checks := []string{
		"CREATE TYPE user_role AS ENUM ('company', 'distributor')",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
