// Package storage provides the optional on-disk audit log of completed risk
// assessments. It uses BoltDB as the underlying storage engine; records are
// keyed by sample ID and timestamp for efficient time-range queries.
//
// The scoring engine itself stays stateless. Only the host writes here,
// after a result has been produced and rendered.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"fna-risk/internal/engine"
)

const assessmentsBucket = "assessments"

// AssessmentRecord is one audited scoring outcome.
type AssessmentRecord struct {
	SampleID   string                `json:"sample_id"`
	Timestamp  time.Time             `json:"timestamp"`
	Label      engine.RiskLabel      `json:"label"`
	Confidence float64               `json:"confidence"`
	TopFactors []engine.Contribution `json:"top_factors,omitempty"`
	ModelVer   string                `json:"model_version,omitempty"`
}

// Store provides persistent storage for assessment audit records.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the audit database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "fna-risk.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(assessmentsBucket)); err != nil {
			return fmt.Errorf("create assessments bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StoreAssessment appends one audit record. The key format is
// "sampleID_timestamp" so records for a sample scan in time order.
func (s *Store) StoreAssessment(record AssessmentRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(assessmentsBucket))

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal assessment record: %w", err)
		}

		key := fmt.Sprintf("%s_%d", record.SampleID, record.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// GetAssessments retrieves audit records for a sample ID within a time
// range, inclusive of both ends, ordered by timestamp.
func (s *Store) GetAssessments(sampleID string, start, end time.Time) ([]AssessmentRecord, error) {
	var records []AssessmentRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(assessmentsBucket))
		c := b.Cursor()

		prefix := []byte(sampleID + "_")
		startKey := []byte(fmt.Sprintf("%s_%d", sampleID, start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%s_%d", sampleID, end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				continue
			}

			var record AssessmentRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // Skip malformed records
			}
			records = append(records, record)
		}

		return nil
	})

	return records, err
}
