package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/photoshare-backend/config"
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	"github.com/ikkim/photoshare-backend/internal/db"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type options struct {
	file       string
	tagSheet   string
	usersSheet string
	dryRun     bool
}

func parseFlags(args []string) (*options, error) {
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	opts := &options{}
	fs.StringVar(&opts.file, "file", "", "XLSX workbook to import")
	fs.StringVar(&opts.tagSheet, "sheet", "Tags", "sheet holding tag names in column A")
	fs.StringVar(&opts.usersSheet, "users-sheet", "Users", "sheet holding username, email, password, role")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "validate the workbook without writing")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.file == "" {
		return nil, errors.New("--file is required")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("Usage: seed --file workbook.xlsx [--sheet Tags] [--users-sheet Users] [--dry-run]: ", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	f, err := excelize.OpenFile(opts.file)
	if err != nil {
		logger.Fatal("Failed to open workbook", err, map[string]interface{}{"file": opts.file})
	}
	defer f.Close()

	tags, err := readTags(f, opts.tagSheet)
	if err != nil {
		logger.Fatal("Failed to read tags", err)
	}
	users, err := readUsers(f, opts.usersSheet)
	if err != nil {
		logger.Fatal("Failed to read users", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	imp := newImporter(db.GetDB(), opts.dryRun)
	tagReport := imp.importTags(tags)
	userReport := imp.importUsers(users)

	fmt.Printf("Tags:  %d created, %d skipped, %d invalid\n", tagReport.created, tagReport.skipped, tagReport.invalid)
	fmt.Printf("Users: %d created, %d skipped, %d invalid\n", userReport.created, userReport.skipped, userReport.invalid)
	if opts.dryRun {
		fmt.Println("Dry run, nothing was written.")
	}
}

type userRow struct {
	Line     int
	Username string `validate:"required,min=2,max=25"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=12"`
	Role     model.UserRole
}

// readTags returns column A of sheet. A missing sheet yields no tags.
func readTags(f *excelize.File, sheet string) ([]string, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}

	var names []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		if name := strings.TrimSpace(row[0]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// readUsers reads username, email, password and role columns. An empty role
// means a regular user.
func readUsers(f *excelize.File, sheet string) ([]userRow, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}

	var users []userRow
	for i, row := range rows {
		if i == 0 {
			continue
		}
		cells := make([]string, 4)
		for j := 0; j < len(cells) && j < len(row); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		if cells[0] == "" && cells[1] == "" {
			continue
		}

		role := model.UserRole(strings.ToLower(cells[3]))
		if role == "" {
			role = model.RoleUser
		}
		users = append(users, userRow{
			Line:     i + 1,
			Username: cells[0],
			Email:    cells[1],
			Password: cells[2],
			Role:     role,
		})
	}
	return users, nil
}

type report struct {
	created int
	skipped int
	invalid int
}

type importer struct {
	tagRepo    repository.TagRepository
	tagService service.TagService
	userRepo   repository.UserRepository
	validate   *validator.Validate
	dryRun     bool
}

func newImporter(conn *gorm.DB, dryRun bool) *importer {
	tagRepo := repository.NewTagRepository(conn)
	return &importer{
		tagRepo:    tagRepo,
		tagService: service.NewTagService(tagRepo),
		userRepo:   repository.NewUserRepository(conn),
		validate:   validator.New(),
		dryRun:     dryRun,
	}
}

func (imp *importer) importTags(names []string) report {
	var r report
	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if n := len([]rune(name)); n < model.TagNameMinLength || n > model.TagNameMaxLength {
			logger.Warn("Skipping invalid tag", map[string]interface{}{"name": raw})
			r.invalid++
			continue
		}
		if seen[name] {
			r.skipped++
			continue
		}
		seen[name] = true

		if imp.dryRun {
			if _, err := imp.tagRepo.FindByName(name); err == nil {
				r.skipped++
			} else {
				r.created++
			}
			continue
		}

		if _, err := imp.tagService.CreateTag(name); err != nil {
			if errors.Is(err, service.ErrTagAlreadyExists) {
				r.skipped++
				continue
			}
			logger.Error("Failed to import tag", err, map[string]interface{}{"name": name})
			r.invalid++
			continue
		}
		r.created++
	}
	return r
}

func (imp *importer) importUsers(rows []userRow) report {
	var r report
	for _, row := range rows {
		if err := imp.validate.Struct(row); err != nil || !row.Role.Valid() {
			logger.Warn("Skipping invalid user row", map[string]interface{}{
				"line":  row.Line,
				"email": row.Email,
			})
			r.invalid++
			continue
		}

		if imp.exists(row) {
			r.skipped++
			continue
		}
		if imp.dryRun {
			r.created++
			continue
		}

		hash, err := util.HashPassword(row.Password)
		if err != nil {
			logger.Error("Failed to hash password", err, map[string]interface{}{"line": row.Line})
			r.invalid++
			continue
		}
		user := &model.User{
			Username:     row.Username,
			Email:        row.Email,
			PasswordHash: hash,
			Role:         row.Role,
		}
		if err := imp.userRepo.Create(user); err != nil {
			logger.Error("Failed to import user", err, map[string]interface{}{"line": row.Line})
			r.invalid++
			continue
		}
		r.created++
	}
	return r
}

func (imp *importer) exists(row userRow) bool {
	if _, err := imp.userRepo.FindByEmail(row.Email); err == nil {
		return true
	}
	_, err := imp.userRepo.FindByUsername(row.Username)
	return err == nil
}
