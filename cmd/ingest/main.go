/**
 * @description
 * Manual data ingest entry point.
 * Loads a property CSV export into Postgres: normalizes property types,
 * fills missing address fields with sentinels, seeds an initial fair price,
 * and upserts records in batches.
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/models
 * - github.com/google/uuid: ingest run id
 *
 * @notes
 * - The initial fair price is (price + zestimate) / 2 when a zestimate
 *   exists, otherwise the listing price. The worker refines it afterwards.
 */

package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/realvest-project/backend/internal/config"
	"github.com/realvest-project/backend/internal/db"
	"github.com/realvest-project/backend/internal/models"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 500

func main() {
	csvPath := flag.String("csv", "data/properties.csv", "path to the property CSV export")
	flag.Parse()

	runID := uuid.New().String()
	log.Printf("🚀 Starting property ingest %s from %s", runID, *csvPath)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := pgDB.AutoMigrate(&models.Property{}, &models.PriceHistory{}); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("failed to open CSV: %v", err)
	}
	defer file.Close()

	properties, skipped, err := readProperties(file)
	if err != nil {
		log.Fatalf("failed to read CSV: %v", err)
	}
	log.Printf("Parsed %d properties (%d rows skipped)", len(properties), skipped)

	total := 0
	for start := 0; start < len(properties); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(properties) {
			end = len(properties)
		}
		batch := properties[start:end]

		err := pgDB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "property_id"}},
			UpdateAll: true,
		}).Create(&batch).Error
		if err != nil {
			log.Fatalf("failed to upsert batch at row %d: %v", start, err)
		}
		total += len(batch)
	}

	log.Printf("✅ Ingest %s completed: %d properties stored.", runID, total)
}

// readProperties parses the CSV into property records. Rows without a usable
// price are skipped.
func readProperties(r io.Reader) ([]models.Property, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, err
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var properties []models.Property
	skipped := 0
	nextID := uint64(1)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		row := rowReader{cols: cols, record: record}

		price, ok := row.float("price")
		if !ok || price <= 0 {
			skipped++
			continue
		}

		p := models.Property{
			Price:            price,
			PropertyType:     models.NormalizePropertyType(row.str("property_type")),
			LivingArea:       row.floatOrZero("living_area"),
			Bedrooms:         row.intPtr("bedrooms"),
			Bathrooms:        row.floatPtr("bathrooms"),
			YearBuilt:        row.intPtr("year_built"),
			LotSize:          row.floatPtr("lot_size"),
			Latitude:         row.floatOrZero("latitude"),
			Longitude:        row.floatOrZero("longitude"),
			Zestimate:        row.floatPtr("zestimate"),
			RentEstimate:     row.floatPtr("rent_estimate"),
			TaxAssessedValue: row.floatPtr("tax_assessed_value"),
			TaxRate:          row.floatPtr("tax_rate"),
			MonthlyHOA:       row.floatPtr("monthly_hoa"),
			Address:          row.str("address"),
			City:             row.str("city"),
			State:            row.str("state"),
			Zipcode:          row.str("zipcode"),
			County:           row.str("county"),
			HomeStatus:       row.str("home_status"),
		}

		if id, ok := row.uint("property_id"); ok {
			p.PropertyID = id
		} else {
			p.PropertyID = nextID
		}
		nextID++

		p.ApplyAddressDefaults()

		// Seed fair price; the prediction pipeline refines it later.
		fair := p.Price
		if p.Zestimate != nil {
			fair = (p.Price + *p.Zestimate) / 2
		}
		p.FairPrice = &fair

		properties = append(properties, p)
	}

	return properties, skipped, nil
}

type rowReader struct {
	cols   map[string]int
	record []string
}

func (r rowReader) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r rowReader) float(name string) (float64, bool) {
	raw := r.str(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r rowReader) floatOrZero(name string) float64 {
	v, _ := r.float(name)
	return v
}

func (r rowReader) floatPtr(name string) *float64 {
	v, ok := r.float(name)
	if !ok {
		return nil
	}
	return &v
}

func (r rowReader) intPtr(name string) *int {
	v, ok := r.float(name)
	if !ok {
		return nil
	}
	i := int(v)
	return &i
}

func (r rowReader) uint(name string) (uint64, bool) {
	raw := r.str(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
