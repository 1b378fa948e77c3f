// Package routes registers the REST surface on a gin engine.
package routes

import (
	"munhub/controllers"

	"github.com/gin-gonic/gin"
)

// Setup registers every endpoint. auth guards everything except login and
// the public committee status.
func Setup(router gin.IRouter, h *controllers.Controller, auth gin.HandlerFunc) {
	router.POST("/auth/login", h.Login)
	router.POST("/auth/delegate-login", h.DelegateLogin)
	router.GET("/committees/:committeeId/status", h.CommitteeStatus)

	api := router.Group("/")
	api.Use(auth)
	api.GET("/auth/me", h.Me)

	SetupEventRoutes(api, h)
	SetupCommitteeRoutes(api, h)
	SetupSessionRoutes(api, h)
	SetupMotionRoutes(api, h)
	SetupVotingRoutes(api, h)
	SetupResolutionRoutes(api, h)
	SetupTimerRoutes(api, h)
	api.POST("/messages/:id/read", h.MarkMessageRead)
}

func SetupEventRoutes(router *gin.RouterGroup, h *controllers.Controller) {
	events := router.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.POST("", h.CreateEvent)
		events.GET("/:id", h.GetEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)
	}
}

// SetupCommitteeRoutes covers the committee itself and everything listed per committee.
func SetupCommitteeRoutes(router *gin.RouterGroup, h *controllers.Controller) {
	router.GET("/committees", h.ListCommittees)
	router.POST("/committees", h.CreateCommittee)

	committee := router.Group("/committees/:committeeId")
	{
		committee.GET("", h.GetCommittee)
		committee.PUT("", h.UpdateCommittee)
		committee.DELETE("", h.DeleteCommittee)
		committee.GET("/qr-data", h.QRData)
		committee.POST("/presidium", h.AssignPresidium)

		committee.POST("/countries", h.AddCountry)
		committee.PUT("/countries/:country", h.UpdateCountry)
		committee.DELETE("/countries/:country", h.RemoveCountry)
		committee.POST("/countries/:country/token", h.RegenerateToken)

		committee.POST("/sessions", h.CreateSession)
		committee.GET("/sessions", h.ListSessions)
		committee.GET("/sessions/active", h.ActiveSession)

		committee.POST("/votings", h.CreateVoting)
		committee.GET("/votings", h.ListCommitteeVotings)

		committee.POST("/resolutions", h.CreateResolution)
		committee.GET("/resolutions", h.ListResolutions)
		committee.GET("/resolutions/mine", h.MyResolutions)
		committee.GET("/resolutions/working-draft", h.WorkingDraft)

		committee.POST("/messages", h.SendMessage)
		committee.GET("/messages/inbox", h.Inbox)
		committee.GET("/messages/sent", h.SentMessages)
		committee.GET("/messages/unread-count", h.UnreadCount)

		committee.GET("/statistics/countries", h.CountryStatistics)
		committee.GET("/statistics/countries/:country", h.DelegateStatistics)
		committee.GET("/statistics/breakdown", h.ActivityBreakdown)
		committee.GET("/statistics/summary", h.CommitteeSummary)
		committee.POST("/statistics/activities", h.RecordActivity)
	}
}

func SetupSessionRoutes(router *gin.RouterGroup, h *controllers.Controller) {
	session := router.Group("/sessions/:id")
	{
		session.GET("", h.GetSession)
		session.PUT("/mode", h.SetSessionMode)
		session.PUT("/roll-call", h.UpdateRollCall)
		session.POST("/complete", h.CompleteSession)

		session.POST("/motions", h.ProposeMotion)
		session.GET("/motions", h.ListMotions)
		session.GET("/motions/pending", h.PendingMotions)
		session.GET("/votings", h.ListSessionVotings)

		session.GET("/speakers", h.GetSpeakerList)
		session.POST("/speakers", h.AddSpeaker)
		session.DELETE("/speakers", h.RemoveSpeaker)
		session.POST("/speakers/move-to-end", h.MoveSpeakerToEnd)
		session.POST("/speakers/next", h.NextSpeaker)

		session.POST("/timers", h.CreateTimer)
		session.GET("/timers", h.ListTimers)
	}
}

func SetupMotionRoutes(router *gin.RouterGroup, h *controllers.Controller) {
	motions := router.Group("/motions/:id")
	{
		motions.GET("", h.GetMotion)
		motions.POST("/second", h.SecondMotion)
		motions.PUT("/status", h.UpdateMotionStatus)
	}
}

func SetupVotingRoutes(router *gin.RouterGroup, h *controllers.Controller) {
	votings := router.Group("/votings/:id")
	{
		votings.GET("", h.GetVoting)
		votings.POST("/votes", h.SubmitVote)
		votings.POST("/finalize", h.FinalizeVoting)
	}
}

func SetupResolutionRoutes(router *gin.RouterGroup, h *controllers.Controller) {
	resolution := router.Group("/resolutions/:id")
	{
		resolution.GET("", h.GetResolution)
		resolution.POST("/confirm", h.ConfirmCoAuthor)
		resolution.POST("/decline", h.DeclineCoAuthor)
		resolution.PUT("/review", h.ReviewResolution)
		resolution.POST("/working-draft", h.SetWorkingDraft)

		resolution.POST("/amendments", h.CreateAmendment)
		resolution.GET("/amendments", h.ListAmendments)
		resolution.POST("/amendments/:amendmentId/apply", h.ApplyAmendment)
	}

	amendments := router.Group("/amendments/:id")
	{
		amendments.GET("", h.GetAmendment)
		amendments.PUT("/review", h.ReviewAmendment)
	}
}

func SetupTimerRoutes(router *gin.RouterGroup, h *controllers.Controller) {
	timers := router.Group("/timers/:id")
	{
		timers.GET("", h.GetTimer)
		timers.GET("/remaining", h.TimerRemaining)
		timers.POST("/start", h.StartTimer())
		timers.POST("/pause", h.PauseTimer())
		timers.POST("/reset", h.ResetTimer())
		timers.POST("/finish", h.FinishTimer())
	}
}
