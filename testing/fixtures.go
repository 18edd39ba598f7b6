package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// TestPassword is the plain password of every fixture user
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with the given role
func (tf *TestFixtures) CreateTestUser(role models.UserRole) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)
	user := &models.User{
		Username:     fmt.Sprintf("%s_%s", role, suffix),
		Email:        fmt.Sprintf("%s.%s@example.com", role, suffix),
		PasswordHash: string(hashedPassword),
		FullName:     "Test " + string(role),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestClient creates an active client with a unique email and CNPJ
func (tf *TestFixtures) CreateTestClient() (*models.Client, error) {
	n := rand.Intn(90000000) + 10000000
	cnpj := fmt.Sprintf("%02d.%03d.%03d/0001-%02d", n/1000000, (n/1000)%1000, n%1000, n%100)

	client := &models.Client{
		CompanyName: fmt.Sprintf("Company %d", n),
		ContactName: "Maria Silva",
		Email:       fmt.Sprintf("contact.%d@example.com", n),
		CNPJ:        &cnpj,
		IsActive:    utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create test client: %w", err)
	}
	return client, nil
}

// FirstProgram returns the first seeded radio program
func (tf *TestFixtures) FirstProgram() (*models.RadioProgram, error) {
	var program models.RadioProgram
	if err := tf.DB.DB.Order("id").First(&program).Error; err != nil {
		return nil, fmt.Errorf("failed to load seeded program: %w", err)
	}
	return &program, nil
}

// FirstAdType returns the first seeded ad type
func (tf *TestFixtures) FirstAdType() (*models.AdType, error) {
	var adType models.AdType
	if err := tf.DB.DB.Order("id").First(&adType).Error; err != nil {
		return nil, fmt.Errorf("failed to load seeded ad type: %w", err)
	}
	return &adType, nil
}

// AssignProgram makes the announcer the locutor of a program
func (tf *TestFixtures) AssignProgram(programID, announcerID uint) error {
	return tf.DB.DB.Model(&models.RadioProgram{}).
		Where("id = ?", programID).
		Update("locutor_id", announcerID).Error
}

// ContractOptions overrides fixture contract defaults
type ContractOptions struct {
	Number    string
	Status    models.ContractStatus
	StartDate time.Time
	EndDate   time.Time
	Spots     int
	Price     decimal.Decimal
}

// CreateTestContract inserts a contract directly, bypassing numbering
func (tf *TestFixtures) CreateTestContract(clientID, programID, adTypeID, creatorID uint, opts ContractOptions) (*models.Contract, error) {
	if opts.Number == "" {
		opts.Number = fmt.Sprintf("CT%d%04d", time.Now().Year(), rand.Intn(9000)+1000)
	}
	if opts.Status == "" {
		opts.Status = models.ContractStatusDraft
	}
	if opts.StartDate.IsZero() {
		opts.StartDate = utils.UTCNow().AddDate(0, 0, 1)
	}
	if opts.EndDate.IsZero() {
		opts.EndDate = opts.StartDate.AddDate(0, 1, 0)
	}
	if opts.Spots == 0 {
		opts.Spots = 10
	}
	if opts.Price.IsZero() {
		opts.Price = decimal.NewFromInt(100)
	}

	total := opts.Price.Mul(decimal.NewFromInt(int64(opts.Spots)))
	contract := &models.Contract{
		ContractNumber:     opts.Number,
		ClientID:           clientID,
		ProgramID:          programID,
		AdTypeID:           adTypeID,
		Title:              "Fixture contract",
		StartDate:          datatypes.Date(opts.StartDate),
		EndDate:            datatypes.Date(opts.EndDate),
		TotalSpots:         opts.Spots,
		PricePerSpot:       opts.Price,
		DiscountPercentage: decimal.Zero,
		TotalValue:         total,
		DiscountAmount:     decimal.Zero,
		FinalValue:         total,
		Status:             opts.Status,
		PaymentStatus:      models.PaymentStatusPending,
		CreatedBy:          creatorID,
	}

	if err := tf.DB.DB.Create(contract).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contract: %w", err)
	}
	return contract, nil
}

// CreateTestDependents attaches one spot, payment and file to a contract
func (tf *TestFixtures) CreateTestDependents(contractID, userID uint) error {
	now := utils.UTCNow()
	spot := &models.SpotSchedule{
		ContractID:    contractID,
		ScheduledDate: datatypes.Date(now),
		ScheduledTime: datatypes.NewTime(8, 30, 0, 0),
		Status:        "scheduled",
	}
	payment := &models.Payment{
		ContractID:  contractID,
		Amount:      decimal.NewFromInt(50),
		PaymentDate: datatypes.Date(now),
		CreatedBy:   userID,
	}
	file := &models.ContractFile{
		ContractID: contractID,
		FileName:   "signed.pdf",
		FilePath:   "/uploads/signed.pdf",
		FileSize:   1024,
		UploadedBy: userID,
	}

	for _, row := range []any{spot, payment, file} {
		if err := tf.DB.DB.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create contract dependent: %w", err)
		}
	}
	return nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test audit log for action: %s", action)
	auditLog := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		Success:     utils.ToPtr(success),
	}

	if err := tf.DB.DB.Create(auditLog).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}
	return auditLog, nil
}
