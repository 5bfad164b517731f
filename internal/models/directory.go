package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	UnknownClass    = "Unknown Class"
	UnknownGrade    = "Unknown Grade"
	UnknownSubject  = "Unknown Subject"
	UnknownExamType = "Unknown Exam Type"
)

type Grade struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
}

type Class struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:100"`
	GradeID  uint   `json:"grade_id" gorm:"not null;index"`
	SchoolID string `json:"school_id" gorm:"size:255;index"`
}

type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
}

// GradeSubject maps a curriculum subject onto a grade.
type GradeSubject struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	GradeID   uint `json:"grade_id" gorm:"not null;index"`
	SubjectID uint `json:"subject_id" gorm:"not null;index"`
}

type ExamType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
}

func (Grade) TableName() string        { return "grades" }
func (Class) TableName() string        { return "classes" }
func (Subject) TableName() string      { return "subjects" }
func (GradeSubject) TableName() string { return "grade_subjects" }
func (ExamType) TableName() string     { return "exam_types" }

// NamedRef is the resolved shape handed to callers of the directory.
type NamedRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ClassRef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	GradeID uint   `json:"grade_id"`
}

// Relation holds a to-one relation that a join may deliver either as a
// single object or as a list holding one object. Null, {} and [] all mean
// the relation is absent.
type Relation[T any] struct {
	value *T
}

func NewRelation[T any](v *T) Relation[T] {
	return Relation[T]{value: v}
}

// Get returns the related record, or nil when the relation is absent.
func (r Relation[T]) Get() *T {
	return r.value
}

func (r Relation[T]) Present() bool {
	return r.value != nil
}

func (r *Relation[T]) UnmarshalJSON(data []byte) error {
	v, err := NormalizeRelation[T](data)
	if err != nil {
		return err
	}
	r.value = v
	return nil
}

func (r Relation[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.value)
}

// Scan implements sql.Scanner so jsonb join payloads can land directly in a Relation.
func (r *Relation[T]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		r.value = nil
		return nil
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("relation: unsupported scan type %T", src)
	}
}

func (r Relation[T]) Value() (driver.Value, error) {
	if r.value == nil {
		return nil, nil
	}
	return json.Marshal(r.value)
}

// NormalizeRelation turns a raw join payload into a single optional record.
func NormalizeRelation[T any](data []byte) (*T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("relation: %w", err)
		}
		switch len(items) {
		case 0:
			return nil, nil
		case 1:
			return NormalizeRelation[T](items[0])
		default:
			return nil, fmt.Errorf("relation: expected at most one record, got %d", len(items))
		}
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("relation: %w", err)
	}
	return &v, nil
}

// NameOr returns the record name produced by name, or fallback when absent.
func NameOr[T any](r Relation[T], name func(*T) string, fallback string) string {
	if v := r.Get(); v != nil {
		if n := name(v); n != "" {
			return n
		}
	}
	return fallback
}

// GradeSubjectRecord is a grade_subjects row with its subject joined as a
// json payload.
type GradeSubjectRecord struct {
	ID      uint              `json:"id"`
	GradeID uint              `json:"grade_id"`
	Subject Relation[Subject] `json:"subject" gorm:"column:subject"`
}

// SubjectName resolves the joined subject name.
func (r GradeSubjectRecord) SubjectName() string {
	return NameOr(r.Subject, func(s *Subject) string { return s.Name }, UnknownSubject)
}
