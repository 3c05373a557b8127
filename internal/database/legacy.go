package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/qs3c/edu_go_server/internal/model"
)

// 旧版本把章节正文同时写在多个字段里，这里按优先级合并到 content
var legacyContentColumns = []string{"content_html", "chapter_content"}

// MigrateLegacyContent 将旧字段中的正文一次性迁移到 content，之后只读写 content
func MigrateLegacyContent(db *gorm.DB) error {
	migrator := db.Migrator()
	total := int64(0)

	for _, column := range legacyContentColumns {
		if !migrator.HasColumn(&model.Chapter{}, column) {
			continue
		}

		result := db.Exec(fmt.Sprintf(
			"UPDATE chapters SET content = %[1]s WHERE (content IS NULL OR LENGTH(content) <= ?) AND LENGTH(%[1]s) > ?",
			column,
		), model.MinContentLength, model.MinContentLength)
		if result.Error != nil {
			return fmt.Errorf("migrate legacy column %s: %w", column, result.Error)
		}
		total += result.RowsAffected
	}

	if total > 0 {
		log.Printf("Migrated legacy content for %d chapters", total)
	}
	return nil
}
