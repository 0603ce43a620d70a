package acceptance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/controllers"
	"github.com/pitstop-crm/pitstop-api/middleware"
	"github.com/pitstop-crm/pitstop-api/models"
	"github.com/pitstop-crm/pitstop-api/tests/testutil"
)

// ProvisioningAcceptanceTestSuite walks the onboarding story end to end:
// the superadmin provisions a shop, the new admin signs in, rotates the
// temporary password and hires their first technician.
type ProvisioningAcceptanceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *ProvisioningAcceptanceTestSuite) SetupTest() {
	suite.db = testutil.OpenTestDatabase(suite.T())
	testutil.InitTestServices(suite.T(), suite.db)

	testutil.CreateTestUser(suite.T(), suite.db, "root@pitstop.test", models.RoleSuperadmin, nil)

	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1")
	v1.POST("/auth/login", controllers.Login)

	me := v1.Group("/users")
	me.Use(middleware.EnsureValidToken())
	me.GET("/me", controllers.GetMyProfile)
	me.PUT("/me", controllers.UpdateMyProfile)

	provisioning := v1.Group("/tenants")
	provisioning.Use(middleware.EnsureValidToken(), middleware.RequireSuperadmin())
	provisioning.POST("", controllers.ProvisionTenant)

	scoped := v1.Group("")
	scoped.Use(middleware.EnsureValidToken(), middleware.RequireTenant())
	personnel := scoped.Group("/personnel")
	personnel.Use(middleware.RequireRole(models.RoleAdmin))
	personnel.GET("", controllers.ListPersonnel)
	personnel.POST("", controllers.CreatePersonnel)
}

func (suite *ProvisioningAcceptanceTestSuite) do(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		suite.NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ProvisioningAcceptanceTestSuite) login(email, password string) (int, string) {
	w := suite.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		return w.Code, ""
	}

	var response struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response.Data.Token
}

func (suite *ProvisioningAcceptanceTestSuite) TestShopOnboardingJourney() {
	// 1. the superadmin signs in and provisions the shop with its admin
	code, rootToken := suite.login("root@pitstop.test", testutil.TestPassword)
	suite.Equal(http.StatusOK, code)

	w := suite.do(http.MethodPost, "/api/v1/tenants", rootToken, gin.H{
		"name":             "Eastside Auto",
		"admin_first_name": "Maya",
		"admin_last_name":  "Ortiz",
		"admin_email":      "maya@eastside.test",
		"admin_password":   "temporary-pass-1",
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	// 2. the new admin signs in with the temporary password
	code, adminToken := suite.login("maya@eastside.test", "temporary-pass-1")
	suite.Equal(http.StatusOK, code)

	w = suite.do(http.MethodGet, "/api/v1/users/me", adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	var profileResp struct {
		Data models.UserProfile `json:"data"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &profileResp))
	suite.True(profileResp.Data.MustChangePassword, "fresh admin must be asked to rotate the password")
	suite.Equal(models.RoleAdmin, profileResp.Data.Role)
	suite.NotNil(profileResp.Data.TenantID)

	// 3. rotating the password clears the flag
	w = suite.do(http.MethodPut, "/api/v1/users/me", adminToken, gin.H{
		"current_password": "temporary-pass-1",
		"new_password":     "a-strong-password",
	})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &profileResp))
	suite.False(profileResp.Data.MustChangePassword)

	// the old password is dead, the new one works
	code, _ = suite.login("maya@eastside.test", "temporary-pass-1")
	suite.Equal(http.StatusUnauthorized, code)
	code, adminToken = suite.login("maya@eastside.test", "a-strong-password")
	suite.Equal(http.StatusOK, code)

	// 4. the admin hires a technician
	w = suite.do(http.MethodPost, "/api/v1/personnel", adminToken, gin.H{
		"first_name": "Leo",
		"last_name":  "Tran",
		"email":      "leo@eastside.test",
		"password":   "leos-temp-pass",
		"role":       models.RoleTechnician,
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodGet, "/api/v1/personnel", adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	var roster struct {
		Data []models.UserProfile `json:"data"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &roster))
	suite.Len(roster.Data, 2, "the shop roster holds the admin and the technician")
}

func (suite *ProvisioningAcceptanceTestSuite) TestOnlySuperadminProvisions() {
	tenant := testutil.CreateTestTenant(suite.T(), suite.db, "existing-shop")
	testutil.CreateTestUser(suite.T(), suite.db, "admin@existing.test", models.RoleAdmin, &tenant.ID)
	token := testutil.SignInAs(suite.T(), "admin@existing.test")

	w := suite.do(http.MethodPost, "/api/v1/tenants", token, gin.H{
		"name":             "Rogue Shop",
		"admin_first_name": "No",
		"admin_last_name":  "Body",
		"admin_email":      "nobody@rogue.test",
		"admin_password":   "irrelevant-pass",
	})
	suite.Equal(http.StatusForbidden, w.Code, "a shop admin must not provision new shops")
}

func (suite *ProvisioningAcceptanceTestSuite) TestNonAdminCannotManagePersonnel() {
	tenant := testutil.CreateTestTenant(suite.T(), suite.db, "staffed-shop")
	testutil.CreateTestUser(suite.T(), suite.db, "tech@staffed.test", models.RoleTechnician, &tenant.ID)
	token := testutil.SignInAs(suite.T(), "tech@staffed.test")

	w := suite.do(http.MethodGet, "/api/v1/personnel", token, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func TestProvisioningAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(ProvisioningAcceptanceTestSuite))
}
