package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-invoices/auth"
	"github.com/diewo77/go-invoices/internal/models"
	"gorm.io/gorm"
)

// SeedOptions controls the data inserted by Seed.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	Demo          bool // also insert demo customers and products
}

type demoProduct struct {
	name        string
	description string
	price       int64
}

var demoCustomers = []struct{ name, email, image string }{
	{"Evil Rabbit", "evil@rabbit.com", "evil-rabbit.png"},
	{"Delba de Oliveira", "delba@oliveira.com", "delba-de-oliveira.png"},
	{"Lee Robinson", "lee@robinson.com", "lee-robinson.png"},
	{"Michael Novotny", "michael@novotny.com", "michael-novotny.png"},
	{"Amy Burns", "amy@burns.com", "amy-burns.png"},
	{"Balazs Orban", "balazs@orban.com", "balazs-orban.png"},
}

var demoProducts = []demoProduct{
	{"Monitor 27\"", "IPS panel, 144Hz", 2599900},
	{"Mechanical keyboard", "Brown switches", 899900},
	{"Wireless mouse", "", 249900},
	{"USB-C dock", "Dual display", 1549900},
	{"Webcam HD", "1080p", 459900},
	{"Headset", "Noise cancelling", 1299900},
	{"Desk lamp", "", 189900},
}

// Seed inserts the admin user and, when requested, demo data. It is idempotent.
func Seed(ctx context.Context, conn *gorm.DB, opts SeedOptions) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.AdminEmail != "" {
			if err := seedAdmin(tx, opts.AdminEmail, opts.AdminPassword); err != nil {
				return err
			}
		}
		if !opts.Demo {
			return nil
		}
		for _, c := range demoCustomers {
			img := models.NormalizeImageURL(c.image)
			customer := models.Customer{Name: c.name, Email: c.email, ImageURL: &img}
			if err := tx.Where("email = ?", c.email).FirstOrCreate(&customer).Error; err != nil {
				return fmt.Errorf("seed customer %s: %w", c.email, err)
			}
		}
		for _, p := range demoProducts {
			product := models.Product{Name: p.name, Price: p.price}
			if p.description != "" {
				d := p.description
				product.Description = &d
			}
			if err := tx.Where("name = ?", p.name).FirstOrCreate(&product).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.name, err)
			}
		}
		return nil
	})
}

func seedAdmin(tx *gorm.DB, email, password string) error {
	var existing models.User
	err := tx.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}
	if password == "" {
		return errors.New("seed admin: empty password")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := tx.Create(&models.User{Email: email, Name: "Admin", Password: hash}).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
