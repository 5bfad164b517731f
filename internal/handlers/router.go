package handlers

import (
	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	testHandler      *TestHandler
	attemptHandler   *AttemptHandler
	gradingHandler   *GradingHandler
	analyticsHandler *AnalyticsHandler
	directoryHandler *DirectoryHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		testHandler: NewTestHandler(
			serviceManager.Authoring(),
			serviceManager.Grading(),
			serviceManager.Export(),
			logger,
		),
		attemptHandler:   NewAttemptHandler(serviceManager.Attempt(), serviceManager.Submission(), logger),
		gradingHandler:   NewGradingHandler(serviceManager.Grading(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		directoryHandler: NewDirectoryHandler(serviceManager.Directory(), logger),
	}
}

// SetupRoutes sets up all API routes. auth runs in front of every /api/v1 route.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", auth)
	{
		// Teacher authoring
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id", hm.testHandler.UpdateTest)
			tests.DELETE("/:id", hm.testHandler.DeleteTest)
			tests.PUT("/:id/publish", hm.testHandler.SetPublished)
			tests.GET("/:id/submissions", hm.testHandler.ListSubmissions)
			tests.GET("/:id/export", hm.testHandler.ExportResults)
		}

		// Student attempts
		student := v1.Group("/student/tests")
		{
			student.GET("", hm.attemptHandler.ListAvailableTests)
			student.GET("/:id", hm.attemptHandler.GetAttempt)
			student.POST("/:id/submit", hm.attemptHandler.Submit)
		}

		// Grading
		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:id", hm.gradingHandler.GetSubmission)
			submissions.PUT("/:id/answers/:question_id", hm.gradingHandler.GradeAnswer)
			submissions.POST("/:id/finalize", hm.gradingHandler.FinalizeGrading)
			submissions.POST("/:id/grade", hm.gradingHandler.GradeSubmission)
		}

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/students/me", hm.analyticsHandler.MyPerformance)
			analytics.GET("/students/:student_id", hm.analyticsHandler.StudentPerformance)
			analytics.GET("/classes/:id", hm.analyticsHandler.ClassPerformance)
		}

		directory := v1.Group("/directory")
		{
			directory.GET("/classes/:id", hm.directoryHandler.GetClass)
			directory.GET("/grades/:id/subjects", hm.directoryHandler.ListSubjectsForGrade)
			directory.GET("/exam-types", hm.directoryHandler.ListExamTypes)
			directory.DELETE("/cache", hm.directoryHandler.InvalidateCache)
		}
	}
}
