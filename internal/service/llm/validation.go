package llm

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bruce/internal/config"
	"bruce/internal/domain/models"
)

func validateAskRequest(req *models.AskRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Prompt,
			validation.Required,
			validation.Length(1, config.MaxPromptLength),
		),
		validation.Field(&req.System, validation.Length(0, config.MaxSystemLength)),
		validation.Field(&req.UserEmail, validation.Length(0, config.MaxEmailLength)),
	)
}

func validateSummarizeRequest(req *models.SummarizeRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Description,
			validation.Required,
			validation.Length(1, config.MaxDescriptionLength),
		),
		validation.Field(&req.UserEmail, validation.Length(0, config.MaxEmailLength)),
	)
}

func validateGenerateSQLRequest(req *models.GenerateSQLRequest) error {
	targets := make([]interface{}, 0, len(models.Targets()))
	for _, t := range models.Targets() {
		targets = append(targets, t)
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Question,
			validation.Required,
			validation.Length(1, config.MaxQuestionLength),
		),
		validation.Field(&req.Target,
			validation.Required,
			validation.In(targets...),
		),
		validation.Field(&req.UserEmail, validation.Length(0, config.MaxEmailLength)),
	)
}

func validateCheckSuggestionsRequest(req *models.CheckSuggestionsRequest) error {
	return validation.ValidateStruct(req,
		// Nil or empty is fine; the scan short-circuits.
		validation.Field(&req.CompletedTasks, validation.Length(0, config.MaxCompletedTasks)),
		validation.Field(&req.UserEmail, validation.Length(0, config.MaxEmailLength)),
	)
}
