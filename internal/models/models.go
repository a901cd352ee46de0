package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"              json:"id"`
	UserName     string `gorm:"column:user_name;uniqueIndex;not null" json:"user_name"`
	Email        string `gorm:"uniqueIndex;not null"                  json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null"         json:"-"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
}

type Product struct {
	ID          uint    `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id"`
	Name        string  `gorm:"column:product_name;not null"               json:"product_name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                                   json:"price"`
	Stock       uint    `json:"stock"`
	ImageURL    string  `gorm:"column:image_url"                           json:"image_url"`
	Category    string  `json:"category"`
}

const (
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
)

// Totals are captured at placement time; the invariant is that
// Subtotal + DeliveryFee - Discount = Total as shown to the user,
// never recomputed from live catalog prices afterwards.
type Order struct {
	ID              uint      `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id"`
	UserID          uint      `gorm:"index;not null"                           json:"user_id"`
	DeliveryName    string    `gorm:"column:delivery_name;not null"            json:"delivery_name"`
	DeliveryAddress string    `gorm:"column:delivery_address;not null"         json:"delivery_address"`
	City            string    `json:"city"`
	Pincode         string    `json:"pincode"`
	Phone           string    `json:"phone"`
	Instructions    string    `json:"instructions"`
	PaymentMethod   string    `gorm:"column:payment_method;not null"           json:"payment_method"`
	OrderDate       time.Time `gorm:"column:order_date;not null"               json:"order_date"`
	Status          string    `gorm:"not null"                                 json:"status"`
	Subtotal        float64   `json:"subtotal"`
	DeliveryFee     float64   `gorm:"column:delivery_fee"                      json:"delivery_fee"`
	Discount        float64   `json:"discount"`
	Total           float64   `json:"total"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"order_id"`
	ProductID uint    `gorm:"not null"                 json:"product_id"`
	Qty       uint    `gorm:"column:qty;not null"      json:"qty"`
	Price     float64 `gorm:"not null"                 json:"price"`
}

type ContactMessage struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null"                 json:"name"`
	Email   string `gorm:"not null"                 json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `gorm:"not null"                 json:"message"`
}
