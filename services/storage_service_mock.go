package services

import (
	"fmt"
	"mime/multipart"
	"sync"
)

// MockStorageService is an in-memory implementation of StorageInterface for testing
type MockStorageService struct {
	stored map[string][]byte // S3 key -> file content
	mu     sync.RWMutex
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		stored: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global storage service instance
func (m *MockStorageService) SetAsMockForTesting() {
	SetStorageService(m)
}

// UploadLogo simulates a logo upload
func (m *MockStorageService) UploadLogo(tenantID string, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	s3Key := fmt.Sprintf("logos/%s/mock_%s", tenantID, fileHeader.Filename)

	m.mu.Lock()
	m.stored[s3Key] = content
	m.mu.Unlock()

	return s3Key, nil
}

// GetPresignedURL simulates generating a presigned URL
func (m *MockStorageService) GetPresignedURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.stored[s3Key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("logo not found in mock storage: %s", s3Key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", s3Key), nil
}

// DeleteLogo simulates deleting a logo
func (m *MockStorageService) DeleteLogo(s3Key string) error {
	if s3Key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.stored, s3Key)
	m.mu.Unlock()

	return nil
}

// LogoExists checks whether a key is present in mock storage
func (m *MockStorageService) LogoExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.stored[s3Key]
	return exists
}

// Clear removes everything from mock storage
func (m *MockStorageService) Clear() {
	m.mu.Lock()
	m.stored = make(map[string][]byte)
	m.mu.Unlock()
}
