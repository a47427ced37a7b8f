package db

import (
	"encoding/csv"
	"os"
	"strings"

	"gorm.io/gorm"
)

type WordPairRecord struct {
	Category   string
	Civilian   string
	Undercover string
}

// LoadWordPairs reads word pairs from a CSV and upserts them into the
// word_pairs table. Existing pairs are left untouched.
func LoadWordPairs(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := ReadWordPairs(path)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		entry := WordPair{
			Category:   record.Category,
			Civilian:   record.Civilian,
			Undercover: record.Undercover,
		}
		if err := conn.FirstOrCreate(&entry, WordPair{Civilian: entry.Civilian, Undercover: entry.Undercover}).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// ReadWordPairs parses a "category,civilian,undercover" CSV with a header
// row. Two-column rows are accepted without a category.
func ReadWordPairs(path string) ([]WordPairRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []WordPairRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		var record WordPairRecord
		switch {
		case len(row) >= 3:
			record = WordPairRecord{
				Category:   strings.TrimSpace(row[0]),
				Civilian:   strings.TrimSpace(row[1]),
				Undercover: strings.TrimSpace(row[2]),
			}
		case len(row) == 2:
			record = WordPairRecord{
				Civilian:   strings.TrimSpace(row[0]),
				Undercover: strings.TrimSpace(row[1]),
			}
		default:
			continue
		}
		if record.Civilian == "" || record.Undercover == "" || strings.EqualFold(record.Civilian, record.Undercover) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
