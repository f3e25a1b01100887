package services

import (
	"context"
	"errors"
	"fmt"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

// CatalogService serves the read-only hotel inventory quotes are built from.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// Rooms lists the bookable (active) rooms of a hotel.
func (s *CatalogService) Rooms(ctx context.Context, hotelID, roomTypeID uint) ([]models.Room, error) {
	q := s.DB.WithContext(ctx).Preload("RoomType").Where("hotel_id = ? AND active = ?", hotelID, true)
	if roomTypeID != 0 {
		q = q.Where("room_type_id = ?", roomTypeID)
	}
	rooms := []models.Room{}
	if err := q.Order("room_number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	return rooms, nil
}

// Room returns one active room. Deactivated rooms are reported as not found.
func (s *CatalogService) Room(ctx context.Context, hotelID, roomID uint) (models.Room, error) {
	room, err := findRoom(s.DB.WithContext(ctx), hotelID, roomID, false)
	if err != nil {
		return room, err
	}
	if !room.Active {
		return models.Room{}, notFoundf("room %d not found", roomID)
	}
	return room, nil
}

func (s *CatalogService) RoomTypes(ctx context.Context, hotelID uint) ([]models.RoomType, error) {
	types := []models.RoomType{}
	if err := s.DB.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("base_rate").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to load room types: %w", err)
	}
	return types, nil
}

// ExtraServices lists the add-ons a quote may include.
func (s *CatalogService) ExtraServices(ctx context.Context, hotelID uint) ([]models.ExtraService, error) {
	list := []models.ExtraService{}
	if err := s.DB.WithContext(ctx).Where("hotel_id = ? AND active = ?", hotelID, true).
		Order("name").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	return list, nil
}

// Hotel returns the hotel profile.
func (s *CatalogService) Hotel(ctx context.Context, hotelID uint) (models.Hotel, error) {
	var h models.Hotel
	if err := s.DB.WithContext(ctx).First(&h, hotelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h, notFoundf("hotel %d not found", hotelID)
		}
		return h, fmt.Errorf("failed to load hotel %d: %w", hotelID, err)
	}
	return h, nil
}
