// Command seed loads demo hotel listings and prints a development token.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hotelbook/config"
	"hotelbook/database"
	bookingRepo "hotelbook/database/repository/booking"
	hotelRepo "hotelbook/database/repository/hotel"
	"hotelbook/models"
	"hotelbook/services/hotel"
	"hotelbook/utils"

	"github.com/google/uuid"
)

type roomSeed struct {
	name     string
	units    int
	capacity int
	price    int64
}

var demoHotels = []struct {
	name, city string
	rooms      []roomSeed
}{
	{"Blue Nile Lodge", "Bahir Dar", []roomSeed{{"King Suite", 4, 2, 450000}, {"Twin Room", 10, 2, 250000}}},
	{"Entoto View Hotel", "Addis Ababa", []roomSeed{{"Deluxe Double", 12, 2, 380000}, {"Family Room", 3, 5, 620000}}},
	{"Simien Guesthouse", "Debark", []roomSeed{{"Dorm Bed", 20, 1, 60000}}},
}

func main() {
	config.LoadConfig()
	database.InitDB()
	defer func() { _ = database.CloseDB(context.Background()) }()

	db := database.DB()
	listings := hotel.NewListingService(hotelRepo.NewMongoHotelRepo(db), bookingRepo.NewMongoBookingRepo(db), nil, utils.GetLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ownerID := uuid.New().String()
	for _, h := range demoHotels {
		listing := &models.HotelListing{
			ID:          uuid.New().String(),
			OwnerID:     ownerID,
			Name:        h.name,
			City:        h.city,
			Country:     "Ethiopia",
			Status:      models.HotelStatusApproved,
			LastUpdated: time.Now().UTC(),
		}
		for _, r := range h.rooms {
			listing.RoomTypes = append(listing.RoomTypes, models.RoomTypeInventory{
				ID:            uuid.New().String(),
				Name:          r.name,
				TotalUnits:    r.units,
				Capacity:      r.capacity,
				PricePerNight: r.price,
			})
		}
		if err := listings.CreateListing(ctx, listing); err != nil {
			if errors.Is(err, database.ErrDuplicateKey) {
				continue
			}
			log.Fatalf("Failed to insert hotel %s: %v", h.name, err)
		}
		fmt.Printf("hotel %s  %s\n", listing.ID, listing.Name)
		for _, rt := range listing.RoomTypes {
			fmt.Printf("  room type %s  %s (%d units)\n", rt.ID, rt.Name, rt.TotalUnits)
		}
	}

	if config.AppConfig.JWTSecret == "" {
		log.Println("JWT_SECRET not set, skipping development token")
		return
	}
	userID := uuid.New().String()
	token, err := utils.GenerateToken(userID, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to mint development token: %v", err)
	}
	fmt.Printf("\ndevelopment user %s\ntoken %s\n", userID, token)
}
