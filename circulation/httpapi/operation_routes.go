package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/acceptreturn"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/addbook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/addcategory"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/cancelrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/issuebookdirect"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registermember"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registeruser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/rejectrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/removebook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/removemember"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/settlefine"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/submitrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/updatebook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/fineestimates"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/ledgeraudit"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/overdueissues"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

type commandResponse struct {
	ID string `json:"id"`
}

type submitRequestBody struct {
	BookID   core.BookIDString   `json:"bookId" validate:"required"`
	MemberID core.MemberIDString `json:"memberId"`
}

type cancelRequestBody struct {
	MemberID core.MemberIDString `json:"memberId"`
}

type issueBody struct {
	BookID   core.BookIDString       `json:"bookId" validate:"required"`
	MemberID core.MemberIDString     `json:"memberId"`
	DueDate  *time.Time              `json:"dueDate"`
	Channel  issuebookdirect.Channel `json:"channel"`
}

type bookBody struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Category        string `json:"category"`
	TotalCopies     int    `json:"totalCopies"`
	ISBN            string `json:"isbn"`
	Publisher       string `json:"publisher"`
	PublicationYear int    `json:"publicationYear"`
	CoverImage      string `json:"coverImage"`
}

func (b bookBody) book(id core.BookIDString) core.Book {
	return core.Book{
		ID:              id,
		Title:           b.Title,
		Author:          b.Author,
		Category:        b.Category,
		TotalCopies:     b.TotalCopies,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		CoverImage:      b.CoverImage,
	}
}

type categoryBody struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type memberBody struct {
	ID    core.MemberIDString `json:"id"`
	Name  string              `json:"name" validate:"required"`
	Email string              `json:"email" validate:"required"`
	Phone string              `json:"phone"`
	Type  string              `json:"type" validate:"required"`
}

type userBody struct {
	Email    string              `json:"email" validate:"required"`
	Password string              `json:"password" validate:"required"`
	Role     core.Role           `json:"role" validate:"required"`
	MemberID core.MemberIDString `json:"memberId"`
}

func (s *Server) registerOperations(v1 *gin.RouterGroup) {
	staff := requireRole(staffRoles...)
	admin := requireRole(adminRoles...)

	v1.POST("/requests", s.submitRequest)
	v1.POST("/requests/:id/approve", staff, s.approveRequest)
	v1.POST("/requests/:id/reject", staff, s.rejectRequest)
	v1.POST("/requests/:id/cancel", s.cancelRequest)

	v1.POST("/issues", s.issueBook)
	v1.POST("/issues/:id/return", staff, s.acceptReturn)
	v1.POST("/issues/:id/settle", staff, s.settleFine)

	v1.POST("/books", staff, s.addBook)
	v1.PUT("/books/:id", staff, s.updateBook)
	v1.DELETE("/books/:id", staff, s.removeBook)
	v1.POST("/categories", staff, s.addCategory)
	v1.POST("/members", staff, s.registerMember)
	v1.DELETE("/members/:id", staff, s.removeMember)
	v1.POST("/users", admin, s.registerUser)

	v1.GET("/reports/fines", s.fineEstimates)
	v1.GET("/reports/overdue", staff, s.overdueIssues)
	v1.GET("/reports/audit", staff, s.ledgerAudit)
}

// respond writes the entity id of a successful command or maps the failure.
func (s *Server) respond(c *gin.Context, status int, result shell.HandlerResult, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(status, commandResponse{ID: result.EntityID})
}

// actingMember resolves whose behalf a student-or-staff call is made on.
// Students always act for their own member; staff must name one.
func actingMember(c *gin.Context, requested core.MemberIDString) (core.MemberIDString, bool) {
	claims := claimsOf(c)

	if claims.Role.IsStaff() {
		if requested == "" {
			abortWithError(c, http.StatusBadRequest, "memberId is required", string(core.ValidationError))
			return "", false
		}

		return requested, true
	}

	if claims.MemberID == "" {
		abortWithError(c, http.StatusForbidden, "account is not linked to a member", "")
		return "", false
	}

	if requested != "" && requested != claims.MemberID {
		abortWithError(c, http.StatusForbidden, "students may only act for their own member", "")
		return "", false
	}

	return claims.MemberID, true
}

func (s *Server) submitRequest(c *gin.Context) {
	var body submitRequestBody
	if !s.bind(c, &body) {
		return
	}

	memberID, ok := actingMember(c, body.MemberID)
	if !ok {
		return
	}

	result, err := s.handlers.SubmitRequest.Handle(c.Request.Context(), submitrequest.BuildCommand(memberID, body.BookID, s.now()))
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) approveRequest(c *gin.Context) {
	command := approverequest.BuildCommand(c.Param("id"), claimsOf(c).Subject, s.now())
	result, err := s.handlers.ApproveRequest.Handle(c.Request.Context(), command)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) rejectRequest(c *gin.Context) {
	command := rejectrequest.BuildCommand(c.Param("id"), claimsOf(c).Subject, s.now())
	result, err := s.handlers.RejectRequest.Handle(c.Request.Context(), command)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelRequest(c *gin.Context) {
	var body cancelRequestBody
	if c.Request.ContentLength != 0 && !s.bind(c, &body) {
		return
	}

	memberID, ok := actingMember(c, body.MemberID)
	if !ok {
		return
	}

	result, err := s.handlers.CancelRequest.Handle(c.Request.Context(), cancelrequest.BuildCommand(c.Param("id"), memberID, s.now()))
	s.respond(c, http.StatusOK, result, err)
}

// issueBook is the librarian dashboard for staff and the QR self-checkout for students.
func (s *Server) issueBook(c *gin.Context) {
	var body issueBody
	if !s.bind(c, &body) {
		return
	}

	claims := claimsOf(c)
	channel := body.Channel
	dueDate := body.DueDate

	// Self-checkout always gets the policy's loan period.
	switch {
	case !claims.Role.IsStaff():
		channel = issuebookdirect.ChannelQR
		dueDate = nil
	case channel == "":
		channel = issuebookdirect.ChannelDashboard
	}

	memberID, ok := actingMember(c, body.MemberID)
	if !ok {
		return
	}

	command := issuebookdirect.BuildCommand(body.BookID, memberID, dueDate, channel, claims.Subject, s.now())
	result, err := s.handlers.IssueBookDirect.Handle(c.Request.Context(), command)
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) acceptReturn(c *gin.Context) {
	result, err := s.handlers.AcceptReturn.Handle(c.Request.Context(), acceptreturn.BuildCommand(c.Param("id"), s.now()))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) settleFine(c *gin.Context) {
	result, err := s.handlers.SettleFine.Handle(c.Request.Context(), settlefine.BuildCommand(c.Param("id"), s.now()))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) addBook(c *gin.Context) {
	var body bookBody
	if !s.bind(c, &body) {
		return
	}

	result, err := s.handlers.AddBook.Handle(c.Request.Context(), addbook.BuildCommand(body.book(""), s.now()))
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) updateBook(c *gin.Context) {
	var body bookBody
	if !s.bind(c, &body) {
		return
	}

	result, err := s.handlers.UpdateBook.Handle(c.Request.Context(), updatebook.BuildCommand(body.book(c.Param("id")), s.now()))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) removeBook(c *gin.Context) {
	result, err := s.handlers.RemoveBook.Handle(c.Request.Context(), removebook.BuildCommand(c.Param("id"), s.now()))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) addCategory(c *gin.Context) {
	var body categoryBody
	if !s.bind(c, &body) {
		return
	}

	result, err := s.handlers.AddCategory.Handle(c.Request.Context(), addcategory.BuildCommand(body.Name, body.Description, s.now()))
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) registerMember(c *gin.Context) {
	var body memberBody
	if !s.bind(c, &body) {
		return
	}

	member := core.Member{ID: body.ID, Name: body.Name, Email: body.Email, Phone: body.Phone, Type: body.Type}
	result, err := s.handlers.RegisterMember.Handle(c.Request.Context(), registermember.BuildCommand(member, s.now()))
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) removeMember(c *gin.Context) {
	result, err := s.handlers.RemoveMember.Handle(c.Request.Context(), removemember.BuildCommand(c.Param("id"), s.now()))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) registerUser(c *gin.Context) {
	var body userBody
	if !s.bind(c, &body) {
		return
	}

	command := registeruser.BuildCommand(body.Email, body.Password, body.Role, body.MemberID, s.now())
	result, err := s.handlers.RegisterUser.Handle(c.Request.Context(), command)
	s.respond(c, http.StatusCreated, result, err)
}

// fineEstimates shows students their own fines only.
func (s *Server) fineEstimates(c *gin.Context) {
	claims := claimsOf(c)
	memberID := c.Query("memberId")

	if !claims.Role.IsStaff() {
		if claims.MemberID == "" || (memberID != "" && memberID != claims.MemberID) {
			abortWithError(c, http.StatusForbidden, "students may only see their own fines", "")
			return
		}
		memberID = claims.MemberID
	}

	estimates, err := s.handlers.FineEstimates.Handle(c.Request.Context(), fineestimates.BuildQuery(memberID, s.now()))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, estimates)
}

func (s *Server) overdueIssues(c *gin.Context) {
	overdue, err := s.handlers.OverdueIssues.Handle(c.Request.Context(), overdueissues.BuildQuery(s.now()))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, overdue)
}

func (s *Server) ledgerAudit(c *gin.Context) {
	audit, err := s.handlers.LedgerAudit.Handle(c.Request.Context(), ledgeraudit.BuildQuery())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, audit)
}
