package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entitlement-backend/shared/database"
	"entitlement-backend/subscription-service/services"
)

// GetSubscriptions retrieves all subscriptions with their service graph
// @Summary Get all subscriptions
// @Description Get all subscriptions including linked services and permissions
// @Tags subscriptions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /subscriptions [get]
func GetSubscriptions(ctx *gin.Context) {
	svc := services.NewSubscriptionService(database.DB)

	subs, err := svc.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    subs,
	})
}

// GetActiveSubscriptions retrieves the public active plan listing
// @Summary Get active subscriptions
// @Description Get up to three active subscriptions for the plan page
// @Tags subscriptions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /subscriptions/active [get]
func GetActiveSubscriptions(ctx *gin.Context) {
	svc := services.NewSubscriptionService(database.DB)

	subs, err := svc.ListActive(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    subs,
	})
}

// GetSubscription retrieves a single subscription by ID
// @Summary Get subscription by ID
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /subscriptions/{id} [get]
func GetSubscription(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewSubscriptionService(database.DB)
	sub, err := svc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sub,
	})
}

// CreateSubscription creates a new subscription
// @Summary Create a new subscription
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param subscription body services.CreateSubscriptionRequest true "Subscription information"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Subscription name already exists"
// @Router /subscriptions [post]
func CreateSubscription(ctx *gin.Context) {
	var req services.CreateSubscriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewSubscriptionService(database.DB)
	sub, err := svc.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Subscription created successfully",
		"data":    sub,
	})
}

// UpdateSubscription updates an existing subscription
// @Summary Update a subscription
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Param subscription body services.CreateSubscriptionRequest true "Updated subscription information"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /subscriptions/{id} [put]
func UpdateSubscription(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.CreateSubscriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewSubscriptionService(database.DB)
	sub, err := svc.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Subscription updated successfully",
		"data":    sub,
	})
}

// DeleteSubscription deletes a subscription and its service links
// @Summary Delete a subscription
// @Description Delete a subscription that no organization currently holds
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} handlers.SuccessResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Subscription is held by organizations"
// @Router /subscriptions/{id} [delete]
func DeleteSubscription(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewSubscriptionService(database.DB)
	if err := svc.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Subscription deleted successfully",
	})
}

// LinkServices links services to a subscription
// @Summary Link services to a subscription
// @Description Attach existing services to a subscription; already linked ids are skipped
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Param request body services.LinkRequest true "Service ids to link"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Subscription or services not found"
// @Router /subscriptions/{id}/services [post]
func LinkServices(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.LinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewMappingService(database.DB)
	sub, err := svc.LinkServicesToSubscription(ctx.Request.Context(), id, req.IDs)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Services linked successfully",
		"data":    sub,
	})
}

// GetSubscriptionServices lists the services linked to a subscription
// @Summary Get services of a subscription
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /subscriptions/{id}/services [get]
func GetSubscriptionServices(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewCatalogService(database.DB)
	svcs, err := svc.ListServicesBySubscription(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    svcs,
	})
}

// DeleteSubscriptionService deletes a service in the scope of a subscription
// @Summary Delete a service within a subscription
// @Description Remove the service, its permission links and its subscription links atomically
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Param serviceId path int true "Service ID"
// @Success 200 {object} handlers.SuccessResponse
// @Failure 404 {object} map[string]string "Service not linked to the subscription"
// @Router /subscriptions/{id}/services/{serviceId} [delete]
func DeleteSubscriptionService(ctx *gin.Context) {
	subscriptionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(ctx, "serviceId")
	if !ok {
		return
	}

	svc := services.NewCatalogService(database.DB)
	if err := svc.DeleteService(ctx.Request.Context(), serviceID, subscriptionID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service deleted successfully",
	})
}
