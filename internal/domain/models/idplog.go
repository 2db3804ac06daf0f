// internal/domain/models/idplog.go
package models

import "time"

// IdPLog is an identity-provider log event mirrored into the local store.
// LogID is the provider's identifier and is unique.
type IdPLog struct {
	LogID        string         `bson:"log_id" json:"log_id"`
	Date         time.Time      `bson:"date" json:"date"`
	Type         string         `bson:"type" json:"type"`
	Description  string         `bson:"description" json:"description"`
	ConnectionID string         `bson:"connection_id" json:"connection_id"`
	ClientID     string         `bson:"client_id" json:"client_id"`
	ClientName   string         `bson:"client_name" json:"client_name"`
	IP           string         `bson:"ip" json:"ip"`
	ClientIP     string         `bson:"client_ip" json:"client_ip"`
	UserAgent    string         `bson:"user_agent" json:"user_agent"`
	Hostname     string         `bson:"hostname" json:"hostname"`
	UserID       string         `bson:"user_id" json:"user_id"`
	UserName     string         `bson:"user_name" json:"user_name"`
	Audience     string         `bson:"audience" json:"audience"`
	Scope        string         `bson:"scope" json:"scope"`
	TenantName   string         `bson:"tenant_name" json:"tenant_name"`
	IsMobile     bool           `bson:"isMobile" json:"isMobile"`
	Details      map[string]any `bson:"details,omitempty" json:"details,omitempty"`
}
