package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/pkg/config"
	"github.com/fms-portal/suggestion-api/pkg/database"
)

type seedAdmin struct {
	Username    string
	Password    string
	DisplayName string
	Role        string
	Department  string
	AccessLevel models.AccessLevel
}

// The admin directory previously shipped as plaintext inside the
// browser bundle. It is seeded here once, hashed, into Postgres.
var admins = []seedAdmin{
	{
		Username:    "bm.admin@fms.edu",
		Password:    "change-me-bm",
		DisplayName: "BM Department Admin",
		Role:        "Department Admin",
		Department:  "Department of Business Management",
		AccessLevel: models.AccessDepartment,
	},
	{
		Username:    "af.admin@fms.edu",
		Password:    "change-me-af",
		DisplayName: "AF Department Admin",
		Role:        "Department Admin",
		Department:  "Department of Accountancy and Finance",
		AccessLevel: models.AccessDepartment,
	},
	{
		Username:    "mm.admin@fms.edu",
		Password:    "change-me-mm",
		DisplayName: "MM Department Admin",
		Role:        "Department Admin",
		Department:  "Department of Marketing Management",
		AccessLevel: models.AccessDepartment,
	},
	{
		Username:    "tm.admin@fms.edu",
		Password:    "change-me-tm",
		DisplayName: "TM Department Admin",
		Role:        "Department Admin",
		Department:  "Department of Tourism Management",
		AccessLevel: models.AccessDepartment,
	},
	{
		Username:    "dean@fms.edu",
		Password:    "change-me-dean",
		DisplayName: "Dean's Office",
		Role:        "Dean",
		Department:  "",
		AccessLevel: models.AccessAll,
	},
	{
		Username:    "superadmin@fms.edu",
		Password:    "change-me-super",
		DisplayName: "System Administrator",
		Role:        "Super Admin",
		Department:  "",
		AccessLevel: models.AccessSuperAdmin,
	},
}

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "database timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	const upsert = `
		INSERT INTO admins (id, username, password_hash, display_name, role, department, access_level, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $8)
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			department = EXCLUDED.department,
			access_level = EXCLUDED.access_level,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for _, admin := range admins {
		hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password for %s: %v", admin.Username, err)
		}

		if _, err := db.ExecContext(ctx, upsert,
			uuid.NewString(),
			admin.Username,
			string(hash),
			admin.DisplayName,
			admin.Role,
			admin.Department,
			admin.AccessLevel,
			now,
		); err != nil {
			log.Fatalf("failed to seed admin %s: %v", admin.Username, err)
		}
		log.Printf("seeded admin %s (%s)", admin.Username, admin.AccessLevel)
	}
}
