package components

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/currency-swap-engine/internal/swap_processor/service"
)

// TopologyInspector exposes the server handshake document used to classify
// the deployment. Split out so the detector is testable without a live
// server.
type TopologyInspector interface {
	Hello(ctx context.Context) (bson.M, error)
}

// MongoTopologyInspector runs the hello command against the admin database
type MongoTopologyInspector struct {
	client *mongo.Client
}

func NewMongoTopologyInspector(client *mongo.Client) *MongoTopologyInspector {
	return &MongoTopologyInspector{client: client}
}

func (i *MongoTopologyInspector) Hello(ctx context.Context) (bson.M, error) {
	var reply bson.M
	err := i.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&reply)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// CapabilityDetectorImpl implements the TransactionCapabilityDetector
// interface by inspecting the deployment's handshake reply: replica set
// members advertise a setName, mongos advertises msg=isdbgrid, and both
// support multi-document transactions. Standalone servers advertise neither.
type CapabilityDetectorImpl struct {
	inspector TopologyInspector
	logger    *slog.Logger
}

// NewCapabilityDetector creates a new CapabilityDetectorImpl
func NewCapabilityDetector(inspector TopologyInspector, logger *slog.Logger) service.TransactionCapabilityDetector {
	return &CapabilityDetectorImpl{
		inspector: inspector,
		logger:    logger,
	}
}

// SupportsTransactions never raises: any inspection failure is treated as
// "transactions unsupported", the safer default.
func (d *CapabilityDetectorImpl) SupportsTransactions(ctx context.Context) bool {
	reply, err := d.inspector.Hello(ctx)
	if err != nil {
		d.logger.Warn("Topology inspection failed, assuming transactions unsupported", "error", err)
		return false
	}

	if setName, ok := reply["setName"].(string); ok && setName != "" {
		return true
	}
	if msg, ok := reply["msg"].(string); ok && msg == "isdbgrid" {
		return true
	}

	return false
}
