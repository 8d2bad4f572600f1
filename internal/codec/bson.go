package codec

import "go.mongodb.org/mongo-driver/bson"

// BSON stores documents as binary BSON. Default format.
type BSON struct{}

func (BSON) Name() string { return "bson" }
func (BSON) Ext() string { return "bson" }

func (BSON) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

func (BSON) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}
