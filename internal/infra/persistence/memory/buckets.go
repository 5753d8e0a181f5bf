package memory

import (
	"encoding/json"
	"fmt"
)

// Buckets lists the snapshot sections persisted by the durable backends, in
// write order.
var Buckets = []string{"organisms", "families", "regions", "status", "parameters"}

// EncodeBuckets serializes each snapshot section as a JSON payload.
func EncodeBuckets(snapshot Snapshot) (map[string][]byte, error) {
	out := make(map[string][]byte, len(Buckets))
	for _, bucket := range Buckets {
		var (
			data []byte
			err  error
		)
		switch bucket {
		case "organisms":
			data, err = json.Marshal(snapshot.Organisms)
		case "families":
			data, err = json.Marshal(snapshot.Families)
		case "regions":
			data, err = json.Marshal(snapshot.Regions)
		case "status":
			data, err = json.Marshal(snapshot.Status)
		case "parameters":
			data, err = json.Marshal(snapshot.Parameters)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBucket unmarshals payload into the matching section of snapshot.
// Unknown buckets and empty payloads are ignored.
func DecodeBucket(snapshot *Snapshot, bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var target any
	switch bucket {
	case "organisms":
		target = &snapshot.Organisms
	case "families":
		target = &snapshot.Families
	case "regions":
		target = &snapshot.Regions
	case "status":
		target = &snapshot.Status
	case "parameters":
		target = &snapshot.Parameters
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
