package cmd

import (
	"log"

	"github.com/frahmantamala/invoice-management/internal/auth"
	categoryDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/category"
	invoiceDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/invoice"
	notificationDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/notification"
	settingsDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/settings"
	userDatamodel "github.com/frahmantamala/invoice-management/internal/core/datamodel/user"
	"github.com/frahmantamala/invoice-management/internal/settings"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			log.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			return seed(tx, string(hash))
		}); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}

		log.Println("Seeding completed successfully")
	},
}

func seed(tx *gorm.DB, passwordHash string) error {
	name := func(s string) *string { return &s }

	users := []userDatamodel.User{
		{Email: "admin@mail.com", Name: name("Ada Admin"), Role: string(auth.RoleAdmin)},
		{Email: "payroll@mail.com", Name: name("Pat Payroll"), Role: string(auth.RolePayrollManager)},
		{Email: "fadhil@mail.com", Name: name("Fadhil"), Role: string(auth.RoleUser)},
		{Email: "contractor@mail.com", Role: string(auth.RoleUser)},
	}
	for _, u := range users {
		attrs := userDatamodel.User{ID: uuid.NewString(), PasswordHash: passwordHash, Name: u.Name, Role: u.Role}
		var out userDatamodel.User
		if err := tx.Where(userDatamodel.User{Email: u.Email}).Attrs(attrs).FirstOrCreate(&out).Error; err != nil {
			return err
		}
		log.Printf("Seeded user %s (%s)", out.Email, out.Role)
	}

	for _, s := range []settingsDatamodel.PaymentSchedule{{Name: "Net 15", DaysDue: 15}, {Name: "Net 30", DaysDue: 30}} {
		var out settingsDatamodel.PaymentSchedule
		attrs := settingsDatamodel.PaymentSchedule{ID: uuid.NewString(), DaysDue: s.DaysDue}
		if err := tx.Where(settingsDatamodel.PaymentSchedule{Name: s.Name}).Attrs(attrs).FirstOrCreate(&out).Error; err != nil {
			return err
		}
	}

	for _, n := range []string{"Development", "Design", "Consulting"} {
		var out categoryDatamodel.Category
		if err := tx.Where(categoryDatamodel.Category{Name: n}).Attrs(categoryDatamodel.Category{ID: uuid.NewString()}).FirstOrCreate(&out).Error; err != nil {
			return err
		}
	}

	var deadlines int64
	if err := tx.Model(&settingsDatamodel.InvoiceDeadlineSetting{}).Count(&deadlines).Error; err != nil {
		return err
	}
	if deadlines == 0 {
		if err := tx.Create(&settingsDatamodel.InvoiceDeadlineSetting{
			ID:         uuid.NewString(),
			Recurrence: string(settings.RecurrenceMonthly),
		}).Error; err != nil {
			return err
		}
	}

	return nil
}

func clearSeedData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&notificationDatamodel.Notification{},
			&invoiceDatamodel.InvoiceItem{},
			&invoiceDatamodel.Invoice{},
			&categoryDatamodel.Category{},
			&settingsDatamodel.InvoiceDeadlineSetting{},
			&settingsDatamodel.PaymentSchedule{},
			&userDatamodel.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
