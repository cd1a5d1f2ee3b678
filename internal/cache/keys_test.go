package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "admin",
			objectType:  "userstats",
			identifier:  "all",
			paramsKey:   nil,
			expectedKey: "ecgacademy:admin:userstats:all",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "session",
			objectType:  "login",
			identifier:  "s1",
			paramsKey:   []string{},
			expectedKey: "ecgacademy:session:login:s1",
		},
		{
			name:        "with one paramsKey",
			serviceName: "quiz",
			objectType:  "submission",
			identifier:  "att_1",
			paramsKey:   []string{"v2"},
			expectedKey: "ecgacademy:quiz:submission:att_1:v2",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "export",
			objectType:  "collection",
			identifier:  "events",
			paramsKey:   []string{"csv", "2025", "06"},
			expectedKey: "ecgacademy:export:collection:events:csv_2025_06",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}

func TestNamedKeys(t *testing.T) {
	if got := LoginSessionKey("u1", "abc"); got != "ecgacademy:session:login:u1:abc" {
		t.Errorf("LoginSessionKey() = %v", got)
	}
	if got := AdminUserStatsKey(); got != "ecgacademy:admin:userstats:all" {
		t.Errorf("AdminUserStatsKey() = %v", got)
	}
	if got := QuizSubmissionKey("att_9"); got != "ecgacademy:quiz:submission:att_9" {
		t.Errorf("QuizSubmissionKey() = %v", got)
	}
}
