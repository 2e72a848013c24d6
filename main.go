package main

import (
	"interview-ace/internal/config"
	"interview-ace/internal/database"
	logger "interview-ace/internal/logging"
	"interview-ace/internal/models"
	"interview-ace/internal/router"
	"interview-ace/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize Logger
	log, err := logger.Init(".")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Load configuration (watched for changes from here on)
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Database
	database.Init(log)

	// Load the interview question bank at startup
	bank, err := models.LoadQuestionBank(config.Conf.Server.QuestionFile)
	if err != nil {
		log.Fatal("Failed to load question bank", zap.Error(err))
	}
	log.Info("Question bank loaded",
		zap.Int("questions", len(bank.Questions)),
		zap.Int("categories", len(bank.Categories())))

	// Daily practice reminders
	emailService := services.NewEmailService(log)
	services.NewScheduler(log, emailService).Start()

	// Setup router, passing the logger to it
	r := router.Setup(log, bank)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
