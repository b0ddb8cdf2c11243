package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"app/internal/domain/model"
)

// productRow は保存用の行表現。positionで挿入順を保持し、
// ファイル版とのラウンドトリップで並びが変わらないようにする。
type productRow struct {
	Position  int    `gorm:"primaryKey;autoIncrement:false"`
	ProductID string `gorm:"type:varchar(64);not null"`
	Title     string `gorm:"type:varchar(255);not null"`
	Price     string `gorm:"type:varchar(64);not null"`
	Category  string `gorm:"type:varchar(255)"`
	Messages  string `gorm:"type:text"`
	Image     string `gorm:"type:text"`
}

func (productRow) TableName() string { return "products" }

// PostgresStore は商品テーブルを1つのコレクションとして読み書きする。
// Saveは全行削除→一括挿入を1トランザクションで行う。
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate はスキーマを整える。起動時の到達確認を兼ねる。
func (s *PostgresStore) Migrate() error {
	if err := s.db.AutoMigrate(&productRow{}); err != nil {
		return fmt.Errorf("migrate products table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]model.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, model.Product{
			ID:       r.ProductID,
			Title:    r.Title,
			Price:    r.Price,
			Category: r.Category,
			Messages: r.Messages,
			Image:    r.Image,
		})
	}
	return products, nil
}

func (s *PostgresStore) Save(ctx context.Context, products []model.Product) error {
	rows := make([]productRow, 0, len(products))
	for i, p := range products {
		rows = append(rows, productRow{
			Position:  i + 1,
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Category:  p.Category,
			Messages:  p.Messages,
			Image:     p.Image,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&productRow{}).Error; err != nil {
			return fmt.Errorf("clear products: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		return nil
	})
}
