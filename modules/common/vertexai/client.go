package vertexai

import (
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"go.uber.org/zap"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// LoadCredentials - Vertex AI 서비스 계정 자격 증명 로드
// 둘 다 비어 있으면 nil을 돌려주고 genai가 Application Default Credentials를 쓴다.
func LoadCredentials(credsJSON, credsPath string) (*auth.Credentials, error) {
	var data []byte

	switch {
	case credsJSON != "":
		// 1. VERTEXAI_CREDENTIALS_JSON (배포용)
		zap.S().Info("✅ [VertexAI] Using VERTEXAI_CREDENTIALS_JSON from environment")
		data = []byte(credsJSON)
	case credsPath != "":
		// 2. VERTEXAI_CREDENTIALS_PATH (로컬 테스트용)
		zap.S().Infof("✅ [VertexAI] Using credentials from file: %s", credsPath)
		fileData, err := os.ReadFile(credsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		data = fileData
	default:
		// 3. Application Default Credentials
		zap.S().Warn("⚠️  [VertexAI] No explicit credentials found, using Application Default Credentials")
		return nil, nil
	}

	// JSON 유효성 검사
	var creds map[string]interface{}
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("invalid JSON credentials: %w", err)
	}

	c, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes:          []string{cloudPlatformScope},
		CredentialsJSON: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load Vertex AI credentials: %w", err)
	}
	return c, nil
}
