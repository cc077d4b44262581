// Package seed creates the first admin account and the demo catalog.
package seed

import (
	"context"
	"fmt"
	"time"

	"autocatalog-backend/internal/auth"
	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// catalogModels are wiped by a forced reseed. Users, orders, uploads and
// the audit trail survive.
var catalogModels = []any{
	&models.Product{},
	&models.Category{},
	&models.Brand{},
	&models.Banner{},
	&models.News{},
	&models.Service{},
}

// EnsureAdmin creates the admin user when the users table is empty.
func EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := repository.Users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}
	u := models.User{Username: username, PasswordHash: hash, Role: models.RoleAdmin}
	if err := repository.Users.Create(ctx, &u); err != nil {
		return false, err
	}
	return true, nil
}

func catalogEmpty(tx *gorm.DB) (bool, error) {
	for _, m := range catalogModels {
		var n int64
		if err := tx.Model(m).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Catalog inserts the demo catalog when the catalog tables are empty, or
// after wiping them when force is set. It reports whether rows were written.
func Catalog(ctx context.Context, force bool) (bool, error) {
	seeded := false
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if force {
			for _, m := range catalogModels {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
					return fmt.Errorf("wiping %T: %w", m, err)
				}
			}
		} else {
			empty, err := catalogEmpty(tx)
			if err != nil {
				return err
			}
			if !empty {
				return nil
			}
		}

		if err := insertDemo(tx); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seeding catalog: %w", err)
	}
	return seeded, nil
}

// Run is the startup sequence shared by the server and the seed command.
func Run(ctx context.Context, adminUsername, adminPassword string, force bool, log *zap.Logger) error {
	created, err := EnsureAdmin(ctx, adminUsername, adminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin user created", zap.String("username", adminUsername))
	}

	seeded, err := Catalog(ctx, force)
	if err != nil {
		return err
	}
	if seeded {
		log.Info("demo catalog seeded", zap.Bool("forced", force))
	}
	return nil
}

func insertDemo(tx *gorm.DB) error {
	brands := []models.Brand{
		{Name: "Bosch", Image: "/uploads/demo/bosch.png", SortOrder: 0},
		{Name: "Launch", Image: "/uploads/demo/launch.png", SortOrder: 1},
		{Name: "Hella Gutmann", Image: "/uploads/demo/hella.png", SortOrder: 2},
		{Name: "Castrol", Image: "/uploads/demo/castrol.png", SortOrder: 3},
	}
	if err := tx.Create(&brands).Error; err != nil {
		return err
	}

	roots := []models.Category{
		{Name: "Diagnostics", Image: "/uploads/demo/diagnostics.jpg", SortOrder: 0},
		{Name: "Garage equipment", Image: "/uploads/demo/garage.jpg", SortOrder: 1},
		{Name: "Oils and fluids", Image: "/uploads/demo/oils.jpg", SortOrder: 2},
	}
	if err := tx.Create(&roots).Error; err != nil {
		return err
	}
	children := []models.Category{
		{Name: "Scanners", ParentID: &roots[0].ID, SortOrder: 0},
		{Name: "Battery testers", ParentID: &roots[0].ID, SortOrder: 1},
		{Name: "Lifts", ParentID: &roots[1].ID, SortOrder: 0},
		{Name: "Tyre service", ParentID: &roots[1].ID, SortOrder: 1},
	}
	if err := tx.Create(&children).Error; err != nil {
		return err
	}

	products := []models.Product{
		{
			Name: "Bosch KTS 560", Description: "Multi-brand ECU diagnostics module with Bluetooth.",
			ShortSpecs: "OBD-II, CAN, Bluetooth", Price: 3200, Image: "/uploads/demo/kts560.jpg",
			BrandID: brands[0].ID, CategoryID: children[0].ID, IsBestseller: true,
		},
		{
			Name: "Launch X431 PRO5", Description: "Tablet scanner with online coding and topology view.",
			ShortSpecs: "10.1\" display, DoIP, CAN FD", Price: 2450, Image: "/uploads/demo/x431.jpg",
			BrandID: brands[1].ID, CategoryID: children[0].ID, IsBestseller: true, DiscountPercent: 10,
		},
		{
			Name: "Bosch BAT 131", Description: "Battery and charging system tester.",
			ShortSpecs: "12 V, printout", Price: 410, Image: "/uploads/demo/bat131.jpg",
			BrandID: brands[0].ID, CategoryID: children[1].ID,
		},
		{
			Name: "Two-post lift 4.0 t", Description: "Electro-hydraulic lift with asymmetric arms.",
			ShortSpecs: "4000 kg, 380 V", Price: 2900, Image: "/uploads/demo/lift.jpg",
			CategoryID: children[2].ID, DiscountPercent: 15,
		},
		{
			Name: "Tyre changer TC-24", Description: "Semi-automatic tyre changer for rims up to 24 inches.",
			ShortSpecs: "10-24\", pneumatic bead breaker", Price: 1750, Image: "/uploads/demo/tc24.jpg",
			CategoryID: children[3].ID,
		},
		{
			Name: "Castrol EDGE 5W-30", Description: "Fully synthetic engine oil.",
			ShortSpecs: "4 L, ACEA C3", Price: 62.5, Image: "/uploads/demo/edge.jpg",
			BrandID: brands[3].ID, CategoryID: roots[2].ID, IsBestseller: true,
		},
	}
	if err := tx.Create(&products).Error; err != nil {
		return err
	}

	banners := []models.Banner{
		{
			Type: models.BannerHero, Image: "/uploads/demo/hero-1.jpg", Title: "Professional garage equipment",
			Description: "Diagnostics, lifts and tyre service from one supplier.", ButtonText: "Catalog",
			ButtonLink: "/catalog", SortOrder: 0, IsActive: true,
		},
		{
			Type: models.BannerHero, Image: "/uploads/demo/hero-2.jpg", Title: "Launch scanners in stock",
			ButtonText: "View", ButtonLink: "/catalog?brand=launch", SortOrder: 1, IsActive: true,
		},
		{Type: models.BannerPromo, Image: "/uploads/demo/promo.jpg", Title: "-15% on lifts", SortOrder: 0, IsActive: true},
		{Type: models.BannerBottom, Image: "/uploads/demo/bottom.jpg", Title: "Installation and service", SortOrder: 0, IsActive: true},
	}
	if err := tx.Create(&banners).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	news := []models.News{
		{Title: "New showroom opened", Content: "<p>Visit our new showroom with live equipment demos.</p>", Date: now.AddDate(0, 0, -14)},
		{Title: "Launch X431 PRO5 now available", Content: "<p>The new generation scanner is in stock.</p>", Date: now.AddDate(0, 0, -3)},
	}
	if err := tx.Create(&news).Error; err != nil {
		return err
	}

	services := []models.Service{
		{Title: "Installation", Description: "Lift and equipment installation by certified engineers.", Icon: "wrench", SortOrder: 0},
		{Title: "Delivery", Description: "Delivery across the country.", Icon: "truck", SortOrder: 1},
		{Title: "Warranty", Description: "Official warranty on every product.", Icon: "shield", SortOrder: 2},
		{Title: "Support", Description: "Phone support on working days.", Icon: "headset", SortOrder: 3},
	}
	return tx.Create(&services).Error
}
