package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "HandyHire-backend/internal/model"
	"HandyHire-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users, profiles, employers and postings
var (
	TestAdminUser      m.User
	TestUserCandidate1 m.User
	TestUserCandidate2 m.User
	TestUserStaff1     m.User
	TestUserStaff2     m.User
	TestCandidate1     m.Employee
	TestCandidate2     m.Employee
	TestStaff1         m.Employee
	TestStaff2         m.Employee
	TestEmployer1      m.Employer
	TestEmployer2      m.Employer

	// Shared plain password for all seeded users
	TestSeedPassword = "SeedPass123!"

	// Exported seeded job postings
	TestPosting1 m.JobPosting
	TestPosting2 m.JobPosting
	TestPosting3 m.JobPosting
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample candidates, staff, employers and postings if empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore admin user that got create during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	tels := []*string{ptr("0100000001"), ptr("0100000002"), ptr("0200000001"), ptr("0200000002"), ptr("0300000001")}
	emails := []*string{ptr("candidate1@example.com"), ptr("candidate2@example.com"), ptr("staff1@example.com"), ptr("staff2@example.com"), ptr("admin@example.com")}
	userSpecs := []struct {
		username string
		email    *string
		tel      *string
		role     string
	}{
		{"candidate_1", emails[0], tels[0], m.RoleEmployee},
		{"candidate_2", emails[1], tels[1], m.RoleEmployee},
		{"employer_staff_1", emails[2], tels[2], m.RoleEmployer},
		{"employer_staff_2", emails[3], tels[3], m.RoleEmployer},
		{"admin_user", emails[4], tels[4], m.RoleAdmin},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Email:    s.email,
			Tel:      s.tel,
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		switch u.Username {
		case "candidate_1":
			TestUserCandidate1 = u
		case "candidate_2":
			TestUserCandidate2 = u
		case "employer_staff_1":
			TestUserStaff1 = u
		case "employer_staff_2":
			TestUserStaff2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	employers := []m.Employer{
		{
			ID:             uuid.New(),
			VerifiedStatus: m.StatusVerified,
			EditableEmployerInfo: m.EditableEmployerInfo{
				Name:         "BuildRight Construction",
				ContactEmail: ptr("jobs@buildright.example.com"),
				Overview:     "Commercial and residential construction",
				Industry:     "Construction",
			},
		},
		{
			ID:             uuid.New(),
			VerifiedStatus: m.StatusPending,
			EditableEmployerInfo: m.EditableEmployerInfo{
				Name:         "PipeWorks Plumbing",
				ContactEmail: ptr("hiring@pipeworks.example.com"),
				Overview:     "Plumbing and heating services",
				Industry:     "Plumbing",
			},
		},
	}
	if err := db.Create(&employers).Error; err != nil {
		return err
	}
	TestEmployer1 = employers[0]
	TestEmployer2 = employers[1]

	carpentry, electrical := "carpentry", "electrical"
	employees := []m.Employee{
		{
			UserID: TestUserCandidate1.ID,
			EditableEmployeeInfo: m.EditableEmployeeInfo{
				FirstName:     "Alice",
				LastName:      "Nguyen",
				TradeCategory: &carpentry,
				Skills:        pq.StringArray{"Framing", "Finish carpentry"},
				ContactEmail:  emails[0],
			},
		},
		{
			UserID: TestUserCandidate2.ID,
			EditableEmployeeInfo: m.EditableEmployeeInfo{
				FirstName:     "Bob",
				LastName:      "Somsak",
				TradeCategory: &electrical,
				Skills:        pq.StringArray{"Wiring", "Panel upgrades"},
				ContactEmail:  emails[1],
			},
		},
		{
			UserID:     TestUserStaff1.ID,
			EmployerID: &TestEmployer1.ID,
			EditableEmployeeInfo: m.EditableEmployeeInfo{
				FirstName:    "Carol",
				LastName:     "Diaz",
				ContactEmail: emails[2],
			},
		},
		{
			UserID:     TestUserStaff2.ID,
			EmployerID: &TestEmployer2.ID,
			EditableEmployeeInfo: m.EditableEmployeeInfo{
				FirstName:    "Dan",
				LastName:     "Osei",
				ContactEmail: emails[3],
			},
		},
	}
	if err := db.Create(&employees).Error; err != nil {
		return err
	}

	TestCandidate1 = employees[0]
	TestCandidate2 = employees[1]
	TestStaff1 = employees[2]
	TestStaff2 = employees[3]

	// Seed job postings (only if none exist yet)
	var postingCount int64
	if err := db.Model(&m.JobPosting{}).Count(&postingCount).Error; err != nil {
		return err
	}
	if postingCount == 0 {
		exp1 := time.Now().AddDate(0, 1, 0)
		exp2 := time.Now().AddDate(0, 2, 0)
		exp3 := time.Now().AddDate(0, 3, 0)

		postings := []m.JobPosting{
			{
				EmployerID: TestEmployer1.ID,
				PostedByID: TestStaff1.UserID,
				Status:     m.PostingStatusActive,
				EditableJobPostingInfo: m.EditableJobPostingInfo{
					Title:    "Site Carpenter",
					Desc:     "Framing and finish work on commercial sites.",
					Req:      "3+ years carpentry; own tools",
					Location: "Portland, OR",
					Type:     "Full-time",
					Salary:   "32 USD/hr",
					Tags:     []string{"carpentry", "construction"},
					Expiring: &exp1,
				},
			},
			{
				EmployerID: TestEmployer1.ID,
				PostedByID: TestStaff1.UserID,
				Status:     m.PostingStatusActive,
				EditableJobPostingInfo: m.EditableJobPostingInfo{
					Title:    "Apprentice Electrician",
					Desc:     "Assist licensed electricians on residential jobs.",
					Req:      "Apprenticeship enrollment",
					Location: "Portland, OR",
					Type:     "Apprenticeship",
					Salary:   "22 USD/hr",
					Tags:     []string{"electrical", "apprentice"},
					Expiring: &exp2,
				},
			},
			{
				EmployerID: TestEmployer2.ID,
				PostedByID: TestStaff2.UserID,
				Status:     m.PostingStatusActive,
				EditableJobPostingInfo: m.EditableJobPostingInfo{
					Title:    "Journeyman Plumber",
					Desc:     "Service and repair calls across the metro area.",
					Req:      "Journeyman license",
					Location: "Salem, OR",
					Type:     "Full-time",
					Salary:   "38 USD/hr",
					Tags:     []string{"plumbing", "service"},
					Expiring: &exp3,
				},
			},
		}

		if err := db.Create(&postings).Error; err != nil {
			return err
		}
		if len(postings) > 0 {
			TestPosting1 = postings[0]
		}
		if len(postings) > 1 {
			TestPosting2 = postings[1]
		}
		if len(postings) > 2 {
			TestPosting3 = postings[2]
		}
	}

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"candidate_1", "candidate_2", "employer_staff_1", "employer_staff_2",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "candidate_1":
			TestUserCandidate1 = u
		case "candidate_2":
			TestUserCandidate2 = u
		case "employer_staff_1":
			TestUserStaff1 = u
		case "employer_staff_2":
			TestUserStaff2 = u
		}
	}

	_ = db.First(&TestCandidate1, "user_id = ?", TestUserCandidate1.ID).Error
	_ = db.First(&TestCandidate2, "user_id = ?", TestUserCandidate2.ID).Error
	_ = db.First(&TestStaff1, "user_id = ?", TestUserStaff1.ID).Error
	_ = db.First(&TestStaff2, "user_id = ?", TestUserStaff2.ID).Error

	if TestStaff1.EmployerID != nil {
		_ = db.First(&TestEmployer1, "id = ?", *TestStaff1.EmployerID).Error
	}
	if TestStaff2.EmployerID != nil {
		_ = db.First(&TestEmployer2, "id = ?", *TestStaff2.EmployerID).Error
	}

	// Load first three postings deterministically
	var postings []m.JobPosting
	if err := db.Order("id ASC").Limit(3).Find(&postings).Error; err == nil {
		if len(postings) > 0 {
			TestPosting1 = postings[0]
		}
		if len(postings) > 1 {
			TestPosting2 = postings[1]
		}
		if len(postings) > 2 {
			TestPosting3 = postings[2]
		}
	}

	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
