package config

import (
	"log"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedAccount is a user created by the seeder
type SeedAccount struct {
	Name  string
	Email string
	Role  domain.Role
}

// DefaultStaff are created when no account holds their role yet
var DefaultStaff = []SeedAccount{
	{Name: "Bendahara", Email: "bendahara@infor24", Role: domain.RoleBendahara},
	{Name: "Administrator", Email: "admin@infor24", Role: domain.RoleAdministrator},
}

// ClassMembers is the class roster, email is the lowercased first name
var ClassMembers = []SeedAccount{
	{Name: "Siti Nur Jannah", Email: "siti@infor24"},
	{Name: "Safitri Sukma Pertiwi", Email: "safitri@infor24"},
	{Name: "Septyani Dwi Susanti", Email: "septyani@infor24"},
	{Name: "Ammar Shafiy", Email: "ammar@infor24"},
	{Name: "Andika Putro Nugroho", Email: "andika@infor24"},
	{Name: "Aisyah Nur Khasanah", Email: "aisyah@infor24"},
	{Name: "Amanda Nadhi Fah Nisa", Email: "amanda@infor24"},
	{Name: "Danang Febrianto", Email: "danang@infor24"},
	{Name: "Indi Kristyanti", Email: "indi@infor24"},
	{Name: "Ahmad Yusuf Briliyanto", Email: "ahmad@infor24"},
	{Name: "Gizza Septiana Salsabila", Email: "gizza@infor24"},
	{Name: "Rindi Fitria Lestari", Email: "rindi@infor24"},
	{Name: "Mauliddina Halimatus Lathifah", Email: "mauliddina@infor24"},
	{Name: "Mursyid Al Fathoni", Email: "mursyid@infor24"},
	{Name: "Wili Indrayani", Email: "wili@infor24"},
	{Name: "Amr Qadir Rahman", Email: "amr@infor24"},
	{Name: "Anggun Wulandari", Email: "anggun@infor24"},
	{Name: "Gandi Surya Tri Atmaja", Email: "gandi@infor24"},
	{Name: "Fais Abimanyu Setiawan", Email: "fais@infor24"},
	{Name: "Mufti Nasrul Amin", Email: "mufti@infor24"},
	{Name: "Ihsandy Wahyu Dirgantara", Email: "ihsandy@infor24"},
}

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg KasConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg KasConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	hashedPassword, err := password.Hash(s.cfg.DefaultPassword)
	if err != nil {
		return err
	}

	if err := s.seedStaff(hashedPassword); err != nil {
		log.Printf("⚠️ Staff seeder skipped: %v", err)
	}

	if s.cfg.SeedMembers {
		if err := s.seedMembers(hashedPassword); err != nil {
			log.Printf("⚠️ Member seeder skipped: %v", err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedStaff creates the treasurer and administrator when their role is empty
func (s *Seeder) seedStaff(hashedPassword string) error {
	for _, account := range DefaultStaff {
		var count int64
		if err := s.db.Model(&models.User{}).Where("role = ?", account.Role).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		created, err := s.upsert(account, hashedPassword)
		if err != nil {
			return err
		}
		if created {
			log.Printf("✅ %s account created: %s", account.Role, account.Email)
		}
	}
	return nil
}

// seedMembers imports the class roster, existing emails are left untouched
func (s *Seeder) seedMembers(hashedPassword string) error {
	imported := 0
	for _, account := range ClassMembers {
		account.Role = domain.RoleAnggota
		created, err := s.upsert(account, hashedPassword)
		if err != nil {
			return err
		}
		if created {
			imported++
		}
	}

	log.Printf("✅ Members imported: %d new of %d", imported, len(ClassMembers))
	return nil
}

// upsert creates account unless its email exists, soft-deleted rows included
func (s *Seeder) upsert(account SeedAccount, hashedPassword string) (bool, error) {
	user := models.User{}
	result := s.db.Unscoped().
		Where(models.User{Email: account.Email}).
		Attrs(models.User{
			Name:     account.Name,
			Password: hashedPassword,
			Role:     account.Role,
		}).
		FirstOrCreate(&user)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
