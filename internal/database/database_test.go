package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMongoDBName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/journal", "journal"},
		{"mongodb+srv://user:pw@cluster0.example.net/atd?retryWrites=true", "atd"},
		{"mongodb://localhost:27017", defaultMongoDB},
		{"mongodb://localhost:27017/", defaultMongoDB},
		{"mongodb://localhost:27017/?tls=true", defaultMongoDB},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mongoDBName(tt.uri), tt.uri)
	}
}
