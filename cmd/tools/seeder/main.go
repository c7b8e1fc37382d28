package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	tenantID := os.Getenv("TENANT_DEFAULT")
	if tenantID == "" {
		tenantID = "default"
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}
	log.Printf("Using Tenant ID: %s", tenantID)

	createTables(ctx, conn)
	seedJurisdictions(ctx, conn)
	seedClassificationCodes(ctx, conn, tenantID)
	seedBusinessTypes(ctx, conn, tenantID)
	seedConfigurations(ctx, conn, tenantID)

	log.Println("Seeding completed successfully!")
}

func createTables(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("Creating tables...")
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jurisdictions (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			special_territory BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS tax_classification_codes (
			tenant_id TEXT NOT NULL,
			code TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			parent_code TEXT,
			level SMALLINT NOT NULL DEFAULT 1,
			unit_of_measure TEXT,
			exemption_eligible BOOLEAN NOT NULL DEFAULT FALSE,
			effective_from TIMESTAMPTZ NOT NULL,
			effective_to TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (tenant_id, code)
		)`,
		`CREATE TABLE IF NOT EXISTS tax_business_types (
			tenant_id TEXT NOT NULL,
			type TEXT NOT NULL,
			display_name TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (tenant_id, type)
		)`,
		`CREATE TABLE IF NOT EXISTS tax_configurations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id TEXT NOT NULL,
			classification_code TEXT NOT NULL,
			business_type TEXT NOT NULL,
			jurisdiction_scope TEXT,
			total_rate NUMERIC(7,4) NOT NULL DEFAULT 0,
			central_rate NUMERIC(7,4),
			state_rate NUMERIC(7,4),
			integrated_rate NUMERIC(7,4),
			territory_rate NUMERIC(7,4),
			surcharge_rate NUMERIC(7,4),
			surcharge_per_unit NUMERIC(12,4),
			effective_from TIMESTAMPTZ NOT NULL,
			effective_to TIMESTAMPTZ,
			reverse_charge BOOLEAN NOT NULL DEFAULT FALSE,
			composition_eligible BOOLEAN NOT NULL DEFAULT FALSE,
			composition_rate NUMERIC(7,4),
			special_conditions JSONB,
			exemption_criteria JSONB,
			threshold_limits JSONB,
			description TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tax_configurations_lookup
			ON tax_configurations (tenant_id, classification_code, business_type, effective_from)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			log.Fatalf("Failed to create table: %v", err)
		}
	}
}

func seedJurisdictions(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("Seeding Jurisdictions...")
	jurisdictions := []struct {
		Code    string
		Name    string
		Special bool
	}{
		{"MH", "Maharashtra", false},
		{"KA", "Karnataka", false},
		{"DL", "Delhi", false},
		{"TN", "Tamil Nadu", false},
		{"GJ", "Gujarat", false},
		{"WB", "West Bengal", false},
		{"AN", "Andaman and Nicobar Islands", true},
		{"CH", "Chandigarh", true},
		{"DD", "Daman and Diu", true},
		{"DN", "Dadra and Nagar Haveli", true},
		{"LD", "Lakshadweep", true},
	}
	for _, j := range jurisdictions {
		_, err := conn.Exec(ctx, `
			INSERT INTO jurisdictions (code, name, special_territory)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, special_territory = EXCLUDED.special_territory
		`, j.Code, j.Name, j.Special)
		if err != nil {
			log.Printf("Failed to seed jurisdiction %s: %v", j.Code, err)
		}
	}
}

func seedClassificationCodes(ctx context.Context, conn *pgx.Conn, tenantID string) {
	fmt.Println("Seeding Classification Codes...")
	codes := []struct {
		Code        string
		Description string
		Parent      string
		Level       int16
		Unit        string
		Exemptible  bool
	}{
		{"10", "Cereals", "", 1, "", true},
		{"1001", "Wheat and meslin", "10", 2, "KG", true},
		{"1006", "Rice", "10", 2, "KG", true},
		{"85", "Electrical machinery and equipment", "", 1, "", false},
		{"8517", "Telephones and communication apparatus", "85", 2, "PCS", false},
		{"8528", "Monitors and projectors", "85", 2, "PCS", false},
		{"99", "Services", "", 1, "", false},
		{"9983", "Professional and technical services", "99", 2, "", false},
		{"9988", "Manufacturing services", "99", 2, "", false},
	}
	for _, c := range codes {
		var parent any
		if c.Parent != "" {
			parent = c.Parent
		}
		var unit any
		if c.Unit != "" {
			unit = c.Unit
		}
		_, err := conn.Exec(ctx, `
			INSERT INTO tax_classification_codes
				(tenant_id, code, description, parent_code, level, unit_of_measure, exemption_eligible, effective_from, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, '2020-01-01', TRUE)
			ON CONFLICT (tenant_id, code) DO UPDATE SET description = EXCLUDED.description
		`, tenantID, c.Code, c.Description, parent, c.Level, unit, c.Exemptible)
		if err != nil {
			log.Printf("Failed to seed classification code %s: %v", c.Code, err)
		}
	}
}

func seedBusinessTypes(ctx context.Context, conn *pgx.Conn, tenantID string) {
	fmt.Println("Seeding Business Types...")
	types := []struct {
		Type        string
		DisplayName string
	}{
		{"B2B", "Business to Business"},
		{"B2C", "Business to Consumer"},
		{"COMPOSITION", "Composition Scheme"},
		{"EXPORT", "Export"},
	}
	for _, t := range types {
		_, err := conn.Exec(ctx, `
			INSERT INTO tax_business_types (tenant_id, type, display_name, active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (tenant_id, type) DO UPDATE SET display_name = EXCLUDED.display_name
		`, tenantID, t.Type, t.DisplayName)
		if err != nil {
			log.Printf("Failed to seed business type %s: %v", t.Type, err)
		}
	}
}

func seedConfigurations(ctx context.Context, conn *pgx.Conn, tenantID string) {
	fmt.Println("Seeding Tax Configurations...")
	type cfg struct {
		Code             string
		BusinessType     string
		Scope            any
		TotalRate        string
		CentralRate      any
		StateRate        any
		IntegratedRate   any
		TerritoryRate    any
		SurchargeRate    any
		SurchargePerUnit any
		EffectiveFrom    string
		EffectiveTo      any
		ReverseCharge    bool
		Composition      bool
		CompositionRate  any
		Exemptions       any
		Thresholds       any
		Description      string
	}
	configs := []cfg{
		// Superseded wheat rate, closed window.
		{Code: "1001", BusinessType: "B2B", TotalRate: "12.0", CentralRate: "6.0", StateRate: "6.0", IntegratedRate: "12.0", TerritoryRate: "6.0",
			EffectiveFrom: "2020-01-01", EffectiveTo: "2022-03-31", Description: "Wheat, pre-revision rate"},
		{Code: "1001", BusinessType: "B2B", TotalRate: "5.0", CentralRate: "2.5", StateRate: "2.5", IntegratedRate: "5.0", TerritoryRate: "2.5",
			EffectiveFrom: "2022-04-01",
			Thresholds:    `{"EXEMPTION_THRESHOLD": 100}`,
			Description:   "Wheat and meslin, standard rate"},
		{Code: "1001", BusinessType: "B2C", TotalRate: "5.0", CentralRate: "2.5", StateRate: "2.5", IntegratedRate: "5.0", TerritoryRate: "2.5",
			EffectiveFrom: "2022-04-01",
			Exemptions:    `{"ESSENTIAL_GOODS": {"flag": true}}`,
			Description:   "Wheat and meslin, retail"},
		{Code: "1006", BusinessType: "B2B", TotalRate: "5.0", CentralRate: "2.5", StateRate: "2.5", IntegratedRate: "5.0", TerritoryRate: "2.5",
			EffectiveFrom: "2022-04-01", Description: "Rice, standard rate"},
		{Code: "8517", BusinessType: "B2B", TotalRate: "18.0", CentralRate: "9.0", StateRate: "9.0", IntegratedRate: "18.0", TerritoryRate: "9.0",
			EffectiveFrom: "2021-01-01", Description: "Communication apparatus"},
		// Jurisdiction-scoped override wins over the unscoped row above.
		{Code: "8517", BusinessType: "B2B", Scope: "MH", TotalRate: "18.0", CentralRate: "9.0", StateRate: "9.0", IntegratedRate: "18.0", TerritoryRate: "9.0",
			SurchargeRate: "1.0",
			EffectiveFrom: "2023-01-01", Description: "Communication apparatus, Maharashtra surcharge"},
		{Code: "8528", BusinessType: "B2B", TotalRate: "28.0", CentralRate: "14.0", StateRate: "14.0", IntegratedRate: "28.0", TerritoryRate: "14.0",
			SurchargeRate: "2.0", SurchargePerUnit: "2.00",
			EffectiveFrom: "2021-01-01", Description: "Monitors and projectors, luxury surcharge"},
		{Code: "9983", BusinessType: "B2B", TotalRate: "18.0", CentralRate: "9.0", StateRate: "9.0", IntegratedRate: "18.0", TerritoryRate: "9.0",
			ReverseCharge: true,
			EffectiveFrom: "2021-01-01", Description: "Professional services, reverse charge"},
		{Code: "9988", BusinessType: "COMPOSITION", TotalRate: "18.0", CentralRate: "9.0", StateRate: "9.0", IntegratedRate: "18.0", TerritoryRate: "9.0",
			Composition: true, CompositionRate: "6.0",
			EffectiveFrom: "2021-01-01", Description: "Manufacturing services, composition scheme"},
		{Code: "1001", BusinessType: "EXPORT", TotalRate: "0.0",
			EffectiveFrom: "2020-01-01", Description: "Wheat export, zero-rated"},
	}
	for _, c := range configs {
		_, err := conn.Exec(ctx, `
			INSERT INTO tax_configurations
				(tenant_id, classification_code, business_type, jurisdiction_scope,
				 total_rate, central_rate, state_rate, integrated_rate, territory_rate,
				 surcharge_rate, surcharge_per_unit,
				 effective_from, effective_to, reverse_charge,
				 composition_eligible, composition_rate,
				 exemption_criteria, threshold_limits, description, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, TRUE)
		`, tenantID, c.Code, c.BusinessType, c.Scope,
			c.TotalRate, c.CentralRate, c.StateRate, c.IntegratedRate, c.TerritoryRate,
			c.SurchargeRate, c.SurchargePerUnit,
			c.EffectiveFrom, c.EffectiveTo, c.ReverseCharge,
			c.Composition, c.CompositionRate,
			c.Exemptions, c.Thresholds, c.Description)
		if err != nil {
			log.Printf("Failed to seed configuration for %s/%s: %v", c.Code, c.BusinessType, err)
		}
	}
}
