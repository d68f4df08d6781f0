package database

import (
	"fmt"

	"catty_srv/internal/models"

	"gorm.io/gorm"
)

// BaseTemplateCode identifies the template seeded into an empty database.
const BaseTemplateCode = "TPL-BASE-001"

var baseTemplateDocument = []byte(`{
  "meta": {"name": "Plantilla base", "version": 1},
  "columns": [
    {"id": "col_section", "name": "Sección", "type": "text", "locked": true},
    {"id": "col_item", "name": "Ítem", "type": "text", "locked": true},
    {"id": "col_answer", "name": "Respuesta", "type": "text", "locked": false},
    {"id": "col_score", "name": "Puntaje", "type": "number", "locked": false}
  ],
  "rows": [
    {
      "id": "row_1",
      "parent_id": null,
      "level": 0,
      "cells": {
        "col_section": "Inicio",
        "col_item": "Pregunta de ejemplo",
        "col_answer": "",
        "col_score": 0
      },
      "type": "item"
    }
  ],
  "rules": {
    "group_requires_parent": true,
    "max_depth": 6
  }
}`)

// EnsureBaseTemplate seeds a minimal public template so a fresh installation
// has something to instantiate files from. Does nothing when any template
// already exists.
func EnsureBaseTemplate(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Template{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	tpl := models.Template{
		Code:           BaseTemplateCode,
		Name:           "Plantilla base",
		Description:    "Plantilla mínima para pruebas.",
		Document:       models.JSONDoc(baseTemplateDocument),
		Version:        1,
		IsActive:       true,
		IsUserTemplate: false,
		Visibility:     models.VisibilityPublic,
	}
	if err := db.Create(&tpl).Error; err != nil {
		return fmt.Errorf("seed base template: %w", err)
	}
	return nil
}
