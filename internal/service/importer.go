package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"estate-metrics/config"
	"estate-metrics/internal/ingest"
	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/logger"
	"estate-metrics/pkg/utils"
)

// ImportService loads scraped listing dumps into the store: JSON, CSV and
// XLSX files, directories of them, or a hosted JSON payload by URL.
type ImportService struct {
	cfg         *config.Config
	log         *logger.Logger
	listingRepo repository.ListingRepository
	uow         repository.UnitOfWork
	fetcher     *ingest.Fetcher
}

func NewImportService(cfg *config.Config, log *logger.Logger, repo *repository.Repository, fetcher *ingest.Fetcher) *ImportService {
	return &ImportService{
		cfg:         cfg,
		log:         log,
		listingRepo: repo.ListingRepo,
		uow:         repo.UnitOfWork,
		fetcher:     fetcher,
	}
}

type ImportResult struct {
	Created int
	Updated int
	Skipped int
}

func (r *ImportResult) merge(other *ImportResult) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
}

// ImportRecords persists one batch of raw records. Unidentifiable records and
// within-batch duplicates are skipped. Existing rows are overwritten only
// when updateExisting is set, and only in the fixed import field list, so the
// building link and computed columns survive re-imports.
func (s *ImportService) ImportRecords(ctx context.Context, records []ingest.Record, kindHint string, updateExisting bool) (*ImportResult, error) {
	result := &ImportResult{}

	seen := make(map[string]struct{}, len(records))
	prepared := make([]*model.Listing, 0, len(records))
	for _, rec := range records {
		listing, err := ingest.MapListing(rec, kindHint)
		if err != nil {
			s.log.DebugContext(ctx, "Skipping record", logger.ErrorField(err))
			result.Skipped++
			continue
		}
		if _, dup := seen[listing.ExternalID]; dup {
			result.Skipped++
			continue
		}
		seen[listing.ExternalID] = struct{}{}
		prepared = append(prepared, listing)
	}

	chunkSize := s.cfg.Import.BatchSize
	if chunkSize <= 0 {
		chunkSize = 500
	}

	for start := 0; start < len(prepared); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := start + chunkSize
		if end > len(prepared) {
			end = len(prepared)
		}
		if err := s.persistChunk(ctx, prepared[start:end], updateExisting, result); err != nil {
			return result, fmt.Errorf("persist chunk at %d: %w", start, err)
		}
	}

	s.log.InfoContext(ctx, "Import finished",
		logger.IntField("records", len(records)),
		logger.IntField("created", result.Created),
		logger.IntField("updated", result.Updated),
		logger.IntField("skipped", result.Skipped),
	)
	return result, nil
}

func (s *ImportService) persistChunk(ctx context.Context, chunk []*model.Listing, updateExisting bool, result *ImportResult) error {
	externalIDs := make([]string, 0, len(chunk))
	for _, listing := range chunk {
		externalIDs = append(externalIDs, listing.ExternalID)
	}

	existing, err := s.listingRepo.ExistingExternalIDs(ctx, externalIDs)
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}

	var toCreate []*model.Listing
	var updateIDs []string
	incoming := make(map[string]*model.Listing, len(chunk))
	for _, listing := range chunk {
		if _, ok := existing[listing.ExternalID]; !ok {
			toCreate = append(toCreate, listing)
			continue
		}
		if updateExisting {
			updateIDs = append(updateIDs, listing.ExternalID)
			incoming[listing.ExternalID] = listing
		}
		// Without updateExisting, known rows are neither created nor updated.
	}

	var toUpdate []*model.Listing
	if len(updateIDs) > 0 {
		current, err := s.listingRepo.FindByExternalIDs(ctx, updateIDs)
		if err != nil {
			return fmt.Errorf("load rows for update: %w", err)
		}
		for _, row := range current {
			if fresh, ok := incoming[row.ExternalID]; ok {
				copyImportFields(row, fresh)
				ingest.SanitizeListing(row)
				toUpdate = append(toUpdate, row)
			}
		}
	}

	err = s.uow.Run(func(txOpts ...utils.DBOption) error {
		if err := s.listingRepo.CreateBulk(ctx, toCreate, txOpts...); err != nil {
			return fmt.Errorf("create listings: %w", err)
		}
		for _, listing := range toUpdate {
			if err := s.listingRepo.UpdateFields(ctx, listing, model.ListingUpdateFields, txOpts...); err != nil {
				return fmt.Errorf("update listing %s: %w", listing.ExternalID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.Created += len(toCreate)
	result.Updated += len(toUpdate)
	return nil
}

// copyImportFields carries the import-owned fields from a freshly mapped
// listing onto the stored row, mirroring ListingUpdateFields.
func copyImportFields(dst, src *model.Listing) {
	dst.URL = src.URL
	dst.Title = src.Title
	dst.DisplayAddress = src.DisplayAddress
	dst.Bedrooms = src.Bedrooms
	dst.Bathrooms = src.Bathrooms
	dst.AreaSqft = src.AreaSqft
	dst.AreaSqm = src.AreaSqm
	dst.Price = src.Price
	dst.PriceCurrency = src.PriceCurrency
	dst.TransactionKind = src.TransactionKind
	dst.Latitude = src.Latitude
	dst.Longitude = src.Longitude
	dst.AgentName = src.AgentName
	dst.AgentPhone = src.AgentPhone
	dst.BrokerName = src.BrokerName
	dst.BrokerLicense = src.BrokerLicense
	dst.PropertyType = src.PropertyType
	dst.Furnishing = src.Furnishing
	dst.Verified = src.Verified
	dst.Reference = src.Reference
	dst.ReraNumber = src.ReraNumber
	dst.AddedOn = src.AddedOn
	dst.Description = src.Description
	dst.Features = src.Features
	dst.Images = src.Images
}

var supportedImportExts = map[string]struct{}{
	".json": {},
	".csv":  {},
	".xlsx": {},
}

// ImportFile parses one file by extension and persists its records.
func (s *ImportService) ImportFile(ctx context.Context, path string, updateExisting bool) (*ImportResult, error) {
	records, kindHint, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportRecords(ctx, records, kindHint, updateExisting)
}

func parseFile(path string) ([]ingest.Record, string, error) {
	kindHint := ingest.DetectTransactionKind(filepath.Base(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		records, err := ingest.ExtractRecords(raw)
		if err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", path, err)
		}
		return records, kindHint, nil
	case ".csv":
		records, err := ingest.ReadCSV(path)
		return records, kindHint, err
	case ".xlsx":
		records, err := ingest.ReadXLSX(path)
		return records, kindHint, err
	default:
		return nil, "", fmt.Errorf("unsupported file type: %s", path)
	}
}

// ImportPath imports a single file or every supported file under a
// directory.
func (s *ImportService) ImportPath(ctx context.Context, path string, updateExisting bool) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return s.ImportFile(ctx, path, updateExisting)
	}
	return s.ImportDir(ctx, path, updateExisting)
}

type parsedFile struct {
	path     string
	records  []ingest.Record
	kindHint string
}

// ImportDir parses files concurrently but persists sequentially; the store
// writes stay single-writer, so chunks never deadlock on the unique index.
func (s *ImportService) ImportDir(ctx context.Context, dir string, updateExisting bool) (*ImportResult, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := supportedImportExts[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	parallel := s.cfg.Import.MaxParallelFiles
	if parallel <= 0 {
		parallel = 4
	}

	var mu sync.Mutex
	parsed := make([]parsedFile, 0, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, kindHint, err := parseFile(path)
			if err != nil {
				// A malformed file should not sink the whole directory.
				s.log.WarnContext(gctx, "Skipping unparseable file",
					logger.StringField("path", path),
					logger.ErrorField(err),
				)
				return nil
			}
			mu.Lock()
			parsed = append(parsed, parsedFile{path: path, records: records, kindHint: kindHint})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, file := range parsed {
		fileResult, err := s.ImportRecords(ctx, file.records, file.kindHint, updateExisting)
		if err != nil {
			return result, fmt.Errorf("import %s: %w", file.path, err)
		}
		result.merge(fileResult)
	}
	return result, nil
}

// ImportURL downloads a hosted JSON payload and persists its records.
func (s *ImportService) ImportURL(ctx context.Context, url string, updateExisting bool) (*ImportResult, error) {
	records, kindHint, err := s.fetcher.FetchRecords(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.ImportRecords(ctx, records, kindHint, updateExisting)
}
