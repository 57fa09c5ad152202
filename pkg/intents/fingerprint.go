package intents

import (
	"encoding/json"
	"fmt"
)

// DirectoryServer identifies a card network's 3DS2 directory server.
type DirectoryServer struct {
	Name string
	ID   string
}

var directoryServers = []DirectoryServer{
	{Name: "visa", ID: "A000000003"},
	{Name: "mastercard", ID: "A000000004"},
	{Name: "american_express", ID: "A000000025"},
}

// LookupDirectoryServer resolves a directory server by network name.
func LookupDirectoryServer(name string) (DirectoryServer, error) {
	for _, ds := range directoryServers {
		if ds.Name == name {
			return ds, nil
		}
	}
	return DirectoryServer{}, fmt.Errorf("invalid directory server name: %q", name)
}

// DirectoryServerEncryption carries the certificate material the 3DS2
// engine needs to encrypt device data for the directory server.
type DirectoryServerEncryption struct {
	CertificateID string   `json:"certificate_id"`
	Certificate   string   `json:"certificate"`
	RootCerts     []string `json:"root_certificate_authorities"`
}

// ThreeDS2Fingerprint is the decoded payload of a 3DS2 SDK next action:
// the source to authenticate and the directory server to authenticate
// against.
type ThreeDS2Fingerprint struct {
	Source              string
	DirectoryServer     DirectoryServer
	ServerTransactionID string
	Encryption          DirectoryServerEncryption
}

type wireFingerprint struct {
	Type                string                    `json:"type"`
	Source              string                    `json:"three_d_secure_2_source"`
	DirectoryServerName string                    `json:"directory_server_name"`
	ServerTransactionID string                    `json:"server_transaction_id"`
	Encryption          DirectoryServerEncryption `json:"directory_server_encryption"`
}

// ParseThreeDS2Fingerprint decodes the SDK data of a 3DS2 next action.
func ParseThreeDS2Fingerprint(data *SDKData) (*ThreeDS2Fingerprint, error) {
	if !data.Is3DS2() {
		return nil, fmt.Errorf("expected sdk data with type %q, got %q",
			sdkTypeThreeDS2Fingerprint, data.Type)
	}
	var wire wireFingerprint
	if err := json.Unmarshal(data.Raw, &wire); err != nil {
		return nil, fmt.Errorf("parse 3ds2 fingerprint: %w", err)
	}
	ds, err := LookupDirectoryServer(wire.DirectoryServerName)
	if err != nil {
		return nil, err
	}
	return &ThreeDS2Fingerprint{
		Source:              wire.Source,
		DirectoryServer:     ds,
		ServerTransactionID: wire.ServerTransactionID,
		Encryption:          wire.Encryption,
	}, nil
}
