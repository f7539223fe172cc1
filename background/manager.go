package background

import (
	"errors"

	"github.com/RichardKnop/machinery/v1"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rotafield/rotafield-api/store"
)

// BackgroundManager is a struct for rotafield background manager
type BackgroundManager struct {
	mongo store.MongoStore

	taskServer *machinery.Server

	worker *machinery.Worker
}

func New(mongoClient *mongo.Client, taskServer *machinery.Server) *BackgroundManager {
	mongoStore := store.NewMongoStore(
		mongoClient,
		viper.GetString("mongo.database"),
		nil,
	)

	return &BackgroundManager{
		mongo:      mongoStore,
		taskServer: taskServer,
	}
}

func (m *BackgroundManager) RegisterTask(name string, taskFunc interface{}) error {
	return m.taskServer.RegisterTask(name, taskFunc)
}

// Run spawn workers to execute background jobs
func (m *BackgroundManager) Run() error {
	if m.worker != nil {
		return errors.New("background worker has started")
	}
	m.worker = m.taskServer.NewWorker("rotafield-worker", 5)
	return m.worker.Launch()
}
