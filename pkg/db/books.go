package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unioncore/dispatch/pkg/core/model"
)

func (d *DB) CreateBook(ctx context.Context, book *model.Book) error {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("failed to insert book %q: %w", book.Code, err)
	}
	return d.appendAudit(ctx, "books", book.ID, nil, book)
}

func (d *DB) GetBook(ctx context.Context, id string) (*model.Book, error) {
	var book model.Book
	err := d.conn(ctx).First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Entity: "book", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %s: %w", id, err)
	}
	return &book, nil
}

func (d *DB) GetBookByCode(ctx context.Context, code string) (*model.Book, error) {
	var book model.Book
	err := d.conn(ctx).First(&book, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Entity: "book", Key: code}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %q: %w", code, err)
	}
	return &book, nil
}

func (d *DB) ListBooks(ctx context.Context, filter BookFilter) ([]model.Book, error) {
	query := d.conn(ctx).Model(&model.Book{})
	if filter.Classification != "" {
		query = query.Where("classification = ?", filter.Classification)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var books []model.Book
	if err := query.Order("morning_sort_order asc, code asc").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}
