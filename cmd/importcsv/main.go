package main

// Drives already-normalised JSON-lines records through the persistence
// abstraction. Parsing a creator's raw platform export (CSV, webhook
// payload) into these records is a declared external collaborator
// (spec.md §1) — this command exists to exercise SnapshotStore.Record, the
// fan store, and the revenue store end to end, not to parse spreadsheets.

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/config"
	"rev-saas-api/internal/model"
	mongorepo "rev-saas-api/internal/repository/mongo"
	"rev-saas-api/internal/service"
)

// importRecord is one line of the JSON-lines input. Kind selects which
// store the record is routed to; the remaining fields are a union of every
// record shape, left zero-valued when not applicable to Kind.
type importRecord struct {
	Kind string `json:"kind"` // snapshot | fan | revenue

	CreatorID string    `json:"creator_id"`
	PostURL   string    `json:"post_url,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	PostedAt  time.Time `json:"posted_at,omitempty"`
	Category  string    `json:"category,omitempty"`

	SnapshotAt time.Time     `json:"snapshot_at,omitempty"`
	Values     model.Metrics `json:"values,omitempty"`

	ExternalID       string    `json:"external_id,omitempty"`
	AcquiredAt       time.Time `json:"acquired_at,omitempty"`
	ReferralCategory string    `json:"referral_category,omitempty"`

	FanExternalID string `json:"fan_external_id,omitempty"`
	RevenueType   string `json:"revenue_type,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	EventAt       time.Time `json:"event_at,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "path to a JSON-lines file (defaults to stdin)")
	agencyIDHex := flag.String("agency-id", "", "agency id whose HMAC salt hashes fan external_ids")
	dryRun := flag.Bool("dry-run", false, "parse and validate without writing to MongoDB")
	flag.Parse()

	cfg := config.Load()

	var in *os.File
	if *inputPath == "" {
		in = os.Stdin
	} else {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("failed to open input file: %v", err)
		}
		defer f.Close()
		in = f
	}

	ctx := context.Background()

	var (
		postRepo     *mongorepo.PostRepository
		snapshotRepo *mongorepo.SnapshotRepository
		fanRepo      *mongorepo.FanRepository
		revenueRepo  *mongorepo.RevenueRepository
		agencyRepo   *mongorepo.AgencyRepository
	)

	if !*dryRun {
		client, err := mongorepo.NewClient(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("failed to connect to MongoDB: %v", err)
		}
		defer client.Close(ctx)

		db := client.DB()
		postRepo = mongorepo.NewPostRepository(db)
		snapshotRepo = mongorepo.NewSnapshotRepository(db)
		fanRepo = mongorepo.NewFanRepository(db)
		revenueRepo = mongorepo.NewRevenueRepository(db)
		agencyRepo = mongorepo.NewAgencyRepository(db)
	}

	hasher := service.NewFanIDHasher()
	encryptionService := service.NewEncryptionService(cfg.EncryptionKey)
	var salt string
	if *agencyIDHex != "" && !*dryRun {
		agencyID, err := primitive.ObjectIDFromHex(*agencyIDHex)
		if err != nil {
			log.Fatalf("invalid -agency-id: %v", err)
		}
		agency, err := agencyRepo.GetAgencyByID(ctx, agencyID)
		if err != nil {
			log.Fatalf("failed to load agency: %v", err)
		}
		if agency == nil {
			log.Fatalf("agency %s not found", *agencyIDHex)
		}
		salt = agency.HashSaltHex
		if encryptionService.IsConfigured() {
			decrypted, err := encryptionService.Decrypt(salt)
			if err != nil {
				log.Fatalf("failed to decrypt agency salt: %v", err)
			}
			salt = decrypted
		}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var imported, skipped, errored int

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec importRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Printf("skipping unparsable line: %v", err)
			errored++
			continue
		}

		creatorID, err := primitive.ObjectIDFromHex(rec.CreatorID)
		if err != nil {
			log.Printf("skipping record with invalid creator_id %q: %v", rec.CreatorID, err)
			errored++
			continue
		}

		if *dryRun {
			log.Printf("[dry-run] would import %s record for creator %s", rec.Kind, creatorID.Hex())
			imported++
			continue
		}

		switch rec.Kind {
		case "snapshot":
			if err := importSnapshot(ctx, postRepo, snapshotRepo, creatorID, rec); err != nil {
				log.Printf("failed to import snapshot for creator %s: %v", creatorID.Hex(), err)
				errored++
				continue
			}
		case "fan":
			if err := importFan(ctx, fanRepo, hasher, salt, creatorID, rec); err != nil {
				log.Printf("failed to import fan for creator %s: %v", creatorID.Hex(), err)
				errored++
				continue
			}
		case "revenue":
			if err := importRevenue(ctx, revenueRepo, creatorID, rec); err != nil {
				log.Printf("failed to import revenue event for creator %s: %v", creatorID.Hex(), err)
				errored++
				continue
			}
		default:
			log.Printf("skipping record with unknown kind %q", rec.Kind)
			skipped++
			continue
		}
		imported++
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("error reading input: %v", err)
	}

	log.Printf("import summary: imported=%d skipped=%d errored=%d", imported, skipped, errored)
}

func importSnapshot(ctx context.Context, posts *mongorepo.PostRepository, snapshots *mongorepo.SnapshotRepository, creatorID primitive.ObjectID, rec importRecord) error {
	post, err := posts.FindByCreatorAndURL(ctx, creatorID, rec.PostURL)
	if err != nil {
		return fmt.Errorf("looking up post: %w", err)
	}
	if post == nil {
		post = &model.SocialPost{
			CreatorID:   creatorID,
			Platform:    rec.Platform,
			PostedAt:    rec.PostedAt,
			URL:         rec.PostURL,
			Category:    model.NormalizeCategory(rec.Category, nil),
			LabelSource: model.LabelSourceMLSuggested,
		}
		if err := posts.Create(ctx, post); err != nil {
			return fmt.Errorf("creating post: %w", err)
		}
	}

	var importRef uuid.UUID
	if id, err := uuid.NewRandom(); err == nil {
		importRef = id
	}

	return snapshots.Record(ctx, post.ID, rec.Values, rec.SnapshotAt, importRef)
}

func importFan(ctx context.Context, fans *mongorepo.FanRepository, hasher *service.FanIDHasher, salt string, creatorID primitive.ObjectID, rec importRecord) error {
	hash := rec.ExternalID
	if salt != "" {
		hashed, err := hasher.Hash(rec.ExternalID, salt)
		if err != nil {
			return fmt.Errorf("hashing external id: %w", err)
		}
		hash = hashed
	}

	fan := &model.Fan{
		CreatorID:          creatorID,
		ExternalIDHash:     hash,
		AcquiredAt:         rec.AcquiredAt,
		ReferralCategory:   rec.ReferralCategory,
		AttributionMethod:  model.AttributionMethodNone,
	}
	return fans.Create(ctx, fan)
}

func importRevenue(ctx context.Context, revenue *mongorepo.RevenueRepository, creatorID primitive.ObjectID, rec importRecord) error {
	amount, err := decimalFromString(rec.Amount)
	if err != nil {
		return fmt.Errorf("parsing amount: %w", err)
	}

	var fanID primitive.ObjectID
	if rec.FanExternalID != "" {
		// External fan identifiers aren't ObjectIDs; in a real deployment
		// this would resolve the hash back to a Fan document. The import
		// command here is an end-to-end exercise of RevenueStore, so a
		// nil FanID signals "unresolved subscriber" rather than failing closed.
	}

	currency := rec.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	event := &model.RevenueEvent{
		CreatorID: creatorID,
		FanID:     fanID,
		Type:      rec.RevenueType,
		Amount:    amount,
		Currency:  currency,
		EventAt:   rec.EventAt,
	}
	return revenue.Create(ctx, event)
}

func decimalFromString(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
