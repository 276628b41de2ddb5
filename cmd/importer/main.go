package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	config "github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/moomingle/go-backend/internal/repository/pgdb/converter"
	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/logger"
	"github.com/moomingle/go-backend/pkg/postgres"
)

// Импортер листингов из CSV. Валидные строки вставляются одной транзакцией
// вместе с outbox-событием, невалидные пропускаются с отчётом по полям.
func main() {
	var (
		filePath     = flag.String("file", "", "путь к CSV-файлу с листингами")
		dryRun       = flag.Bool("dry-run", false, "только валидация, без записи в базу")
		validateOnly = flag.Bool("validate-only", false, "синоним -dry-run")
	)
	flag.Parse()
	if *validateOnly {
		*dryRun = true
	}

	log := logger.NewSlogLogger()

	if *filePath == "" {
		log.Errorf(nil, "-file is required")
		os.Exit(2)
	}

	rows, err := readListingRows(*filePath)
	if err != nil {
		log.Errorf(err, "failed to read csv file")
		os.Exit(1)
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "failed to run migrations")
		os.Exit(1)
	}

	listingRepo := pgdb.NewListingRepo(db.Pool, pgdbConv.NewListingConverter())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverter())

	listingUC := usecase.NewListingUC(listingRepo, outboxRepo, db.Pool, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := listingUC.Import(ctx, &usecase.ImportListingsReq{
		Rows:   rows,
		DryRun: *dryRun,
	})
	if err != nil {
		log.Errorf(err, "import failed")
		os.Exit(1)
	}

	if *dryRun {
		fmt.Printf("dry-run: %d valid, %d skipped\n", res.Imported, res.Skipped)
	} else {
		fmt.Printf("imported %d listings, skipped %d\n", res.Imported, res.Skipped)
	}
	for _, re := range res.Errors {
		fmt.Printf("  line %d: %s: %s\n", re.Line, re.Field, re.Message)
	}

	if res.Imported == 0 && res.Skipped > 0 {
		os.Exit(1)
	}
}

// readListingRows читает CSV с заголовком и маппит колонки по именам.
// Отсутствующие колонки дают пустые значения: их отбраковывает валидация
// импорта, а не парсер.
func readListingRows(path string) ([]usecase.ListingRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []usecase.ListingRow
	line := 1 // заголовок — первая строка
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		rows = append(rows, usecase.ListingRow{
			Line:          line,
			Name:          field(record, "name"),
			Breed:         field(record, "breed"),
			AnimalType:    field(record, "animal_type"),
			PriceRaw:      field(record, "price"),
			Location:      field(record, "location"),
			AgeRaw:        field(record, "age"),
			YieldRaw:      field(record, "yield"),
			SellerName:    field(record, "seller_name"),
			ImageURL:      field(record, "image_url"),
			IsVerifiedRaw: field(record, "is_verified"),
		})
	}

	return rows, nil
}
