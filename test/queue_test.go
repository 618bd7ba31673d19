package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"medqueue/internal/auth"
	"medqueue/internal/handlers"
	"medqueue/internal/models"
	"medqueue/internal/queue"
	"medqueue/internal/storage"
	"medqueue/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func AuthMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.Request.Header.Get("X-Test-UserID")
		if userIDStr == "" {
			c.Set("userID", uint(1))
		} else {
			id, err := strconv.Atoi(userIDStr)
			if err != nil {
				c.Set("userID", uint(1))
			} else {
				c.Set("userID", uint(id))
			}
		}
		role := c.Request.Header.Get("X-Test-Role")
		if role == "" {
			role = models.RoleRegistrar
		}
		c.Set("role", role)
		c.Next()
	}
}

func setupTestServer() *httptest.Server {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load("../.env")
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectTestingDatabase()
	storage.DB.Exec("TRUNCATE TABLE users, departments, specialists, daily_queues, queue_entries, join_tokens RESTART IDENTITY CASCADE;")

	if err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Specialist{},
		&models.DailyQueue{},
		&models.QueueEntry{},
		&models.JoinToken{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	go ws.HubInstance.Run()

	r := gin.Default()

	public := r.Group("/api")
	{
		public.GET("/join/:token", handlers.JoinTokenInfoHandler)
		public.POST("/join/start", handlers.StartJoinHandler)
		public.POST("/join/complete", handlers.CompleteJoinHandler)
		public.GET("/queues/:id/entries", handlers.BoardEntriesHandler)
		public.GET("/queues/:id/tickets/:number", handlers.TicketStatusHandler)
		public.GET("/queues/:id/ws", ws.QueueWebSocketHandler)
	}

	staff := r.Group("/api", AuthMiddlewareTest(),
		auth.RequireRole(models.RoleAdmin, models.RoleRegistrar, models.RoleSpecialist))
	{
		staff.POST("/queues/tickets", handlers.IssueTicketHandler)
		staff.POST("/queues/:id/open", handlers.OpenDayHandler)
		staff.POST("/queues/:id/reorder", handlers.BulkReorderHandler)
		staff.POST("/entries/:id/status", handlers.TransitionEntryHandler)
		staff.POST("/entries/:id/move", handlers.MoveEntryHandler)
		staff.POST("/join-tokens", handlers.IssueJoinTokenHandler)
	}

	return httptest.NewServer(r)
}

func createSpecialist(t *testing.T) models.Specialist {
	dept := models.Department{Name: fmt.Sprintf("Кардиология_%d", time.Now().UnixNano())}
	assert.NoError(t, storage.DB.Create(&dept).Error, "Ошибка создания отделения")
	spec := models.Specialist{DepartmentID: dept.ID, FullName: "Иванова А.П.", Cabinet: "12"}
	assert.NoError(t, storage.DB.Create(&spec).Error, "Ошибка создания специалиста")
	return spec
}

func postJSON(t *testing.T, url string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest("POST", url, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	assert.NoError(t, err, "Ошибка запроса "+url)
	var decoded map[string]interface{}
	json.NewDecoder(res.Body).Decode(&decoded)
	res.Body.Close()
	return res, decoded
}

func TestQueueFlow(t *testing.T) {
	ts := setupTestServer()
	defer ts.Close()

	spec := createSpecialist(t)
	staffHeaders := map[string]string{"X-Test-UserID": "1"}

	// 1. Три конкурентных выдачи талона — номера {1,2,3} без повторов.
	ticketURL := ts.URL + "/api/queues/tickets"
	var wg sync.WaitGroup
	numbers := make(chan int, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, body := postJSON(t, ticketURL, map[string]interface{}{
				"specialist_id": spec.ID,
				"patient_name":  fmt.Sprintf("Пациент %d", i),
			}, staffHeaders)
			assert.Equal(t, http.StatusOK, res.StatusCode, "Выдача талона не удалась")
			numbers <- int(body["ticket_number"].(float64))
		}(i)
	}
	wg.Wait()
	close(numbers)

	issued := map[int]bool{}
	for n := range numbers {
		assert.False(t, issued[n], "Номер талона выдан дважды: %d", n)
		issued[n] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, issued, "Выданы не номера 1..3")
	log.Println("Талоны выданы:", issued)

	var q models.DailyQueue
	assert.NoError(t, storage.DB.Where("specialist_id = ?", spec.ID).First(&q).Error)
	assert.Equal(t, 3, q.LastTicket, "Счётчик очереди не совпадает")

	// 2. Подключаем WS к комнате очереди.
	wsURL := "ws" + ts.URL[4:] + "/api/queues/" + strconv.Itoa(int(q.ID)) + "/ws"
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err, "Ошибка подключения к WS")
	defer wsConn.Close()

	// 3. Перемещаем талон 3 на первую позицию.
	var entry3 models.QueueEntry
	assert.NoError(t, storage.DB.Where("queue_id = ? AND ticket_number = ?", q.ID, 3).First(&entry3).Error)

	moveURL := ts.URL + "/api/entries/" + strconv.Itoa(int(entry3.ID)) + "/move"
	res, _ := postJSON(t, moveURL, map[string]int{"new_position": 1}, staffHeaders)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Перемещение не удалось")

	// Позиции: талон 3 — позиция 1, талон 1 — позиция 2, талон 2 — позиция 3.
	var entries []models.QueueEntry
	assert.NoError(t, storage.DB.Where("queue_id = ?", q.ID).Order("position ASC").Find(&entries).Error)
	assert.Equal(t, 3, len(entries))
	assert.Equal(t, 3, entries[0].TicketNumber)
	assert.Equal(t, 1, entries[1].TicketNumber)
	assert.Equal(t, 2, entries[2].TicketNumber)
	positions := map[int]bool{}
	for _, e := range entries {
		assert.False(t, positions[e.Position], "Дубликат позиции %d", e.Position)
		positions[e.Position] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, positions, "Позиции не плотные 1..N")

	// 4. Два конкурентных вызова талона 3 — ровно один успех, второй конфликт.
	statusURL := ts.URL + "/api/entries/" + strconv.Itoa(int(entry3.ID)) + "/status"
	results := make(chan int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := postJSON(t, statusURL, map[string]string{
				"status":       models.StatusServing,
				"window_label": "Кабинет 12",
			}, staffHeaders)
			results <- res.StatusCode
		}()
	}
	wg.Wait()
	close(results)

	codes := []int{}
	for code := range results {
		codes = append(codes, code)
	}
	assert.Contains(t, codes, http.StatusOK, "Ни один вызов не прошёл")
	assert.Contains(t, codes, http.StatusConflict, "Конфликт не зафиксирован")

	// Недопустимый переход serving → waiting не проходит.
	res, body := postJSON(t, statusURL, map[string]string{"status": models.StatusWaiting}, staffHeaders)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", body["code"], "Ожидался код INVALID_TRANSITION")

	// 5. WS получил события по очереди (перемещение и вызов).
	wsConn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, wsMessage, err := wsConn.ReadMessage()
	assert.NoError(t, err, "Ошибка чтения WS сообщения")
	var wsMsg map[string]interface{}
	assert.NoError(t, json.Unmarshal(wsMessage, &wsMsg), "Ошибка разбора WS сообщения")
	log.Println("Получено WS сообщение:", wsMsg)
	assert.Contains(t, wsMsg, "event_type", "WS сообщение не содержит поле event_type")
	assert.Contains(t, wsMsg, "origin", "WS сообщение не содержит поле origin")

	// 6. Публичная страница талона: статус и число ожидающих впереди.
	lookupURL := ts.URL + "/api/queues/" + strconv.Itoa(int(q.ID)) + "/tickets/1"
	lookupRes, err := http.Get(lookupURL)
	assert.NoError(t, err)
	defer lookupRes.Body.Close()
	assert.Equal(t, http.StatusOK, lookupRes.StatusCode)
	var lookup map[string]interface{}
	json.NewDecoder(lookupRes.Body).Decode(&lookup)
	assert.Equal(t, models.StatusWaiting, lookup["status"])
}

func TestJoinFlow(t *testing.T) {
	ts := setupTestServer()
	defer ts.Close()

	spec := createSpecialist(t)
	staffHeaders := map[string]string{"X-Test-UserID": "1"}

	// 1. Персонал выпускает join-токен на двоих.
	res, body := postJSON(t, ts.URL+"/api/join-tokens", map[string]interface{}{
		"specialist_id": spec.ID,
		"ttl_minutes":   30,
		"max_uses":      2,
	}, staffHeaders)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Выпуск токена не удался")
	token := body["token"].(string)

	// 2. Старт и завершение самозаписи первого пациента.
	res, body = postJSON(t, ts.URL+"/api/join/start", map[string]string{"token": token}, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Старт сессии не удался")
	session1 := body["session_token"].(string)

	res, body = postJSON(t, ts.URL+"/api/join/complete", map[string]string{
		"session_token": session1,
		"patient_name":  "Петров П.П.",
		"phone":         "+79990001122",
	}, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Завершение записи не удалось")
	assert.Equal(t, float64(1), body["ticket_number"])
	assert.Equal(t, false, body["duplicate"])

	// 3. Повтор той же заявки (ретрай с мобильной сети): тот же номер, duplicate=true.
	res, body = postJSON(t, ts.URL+"/api/join/start", map[string]string{"token": token}, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	session2 := body["session_token"].(string)

	res, body = postJSON(t, ts.URL+"/api/join/complete", map[string]string{
		"session_token": session2,
		"patient_name":  "Петров П.П.",
		"phone":         "+79990001122",
	}, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(1), body["ticket_number"], "Повтор должен вернуть уже выданный номер")
	assert.Equal(t, true, body["duplicate"], "Повтор должен быть помечен duplicate")

	// Дубликат не расходует лимит токена.
	var jt models.JoinToken
	assert.NoError(t, storage.DB.Where("token = ?", token).First(&jt).Error)
	assert.Equal(t, 1, jt.CurrentUses)

	// 4. Второй пациент занимает последний слот.
	res, body = postJSON(t, ts.URL+"/api/join/start", map[string]string{"token": token}, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	session3 := body["session_token"].(string)
	res, body = postJSON(t, ts.URL+"/api/join/complete", map[string]string{
		"session_token": session3,
		"patient_name":  "Сидорова М.И.",
		"phone":         "+79990003344",
	}, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(2), body["ticket_number"])

	// 5. Лимит исчерпан: старт отклоняется кодом TOKEN_EXHAUSTED.
	res, body = postJSON(t, ts.URL+"/api/join/start", map[string]string{"token": token}, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "TOKEN_EXHAUSTED", body["code"])

	// 6. Просроченная сессия: завершение с несуществующим session_token.
	res, body = postJSON(t, ts.URL+"/api/join/complete", map[string]string{
		"session_token": "davno-istekshaya-sessia",
		"patient_name":  "Кто-то",
	}, nil)
	assert.Equal(t, http.StatusGone, res.StatusCode)
	assert.Equal(t, "SESSION_EXPIRED", body["code"])

	// 7. Открытие приёма закрывает окно самозаписи.
	var q models.DailyQueue
	assert.NoError(t, storage.DB.Where("specialist_id = ?", spec.ID).First(&q).Error)
	token2, err := queue.IssueJoinToken(spec.ID, q.Date, 30*time.Minute, 5, 1)
	assert.NoError(t, err)

	res, _ = postJSON(t, ts.URL+"/api/queues/"+strconv.Itoa(int(q.ID))+"/open", nil, staffHeaders)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Открытие приёма не удалось")

	res, body = postJSON(t, ts.URL+"/api/join/start", map[string]string{"token": token2.Token}, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "JOIN_WINDOW_CLOSED", body["code"])

	// 8. Страница токена по QR тоже показывает закрытое окно, хотя срок
	// и лимит токена ещё не исчерпаны.
	infoRes, err := http.Get(ts.URL + "/api/join/" + token2.Token)
	assert.NoError(t, err)
	defer infoRes.Body.Close()
	assert.Equal(t, http.StatusOK, infoRes.StatusCode)
	var info map[string]interface{}
	json.NewDecoder(infoRes.Body).Decode(&info)
	assert.Equal(t, false, info["open"], "Окно должно быть закрыто после открытия приёма")
}

func TestConcurrentJoinExhaustion(t *testing.T) {
	ts := setupTestServer()
	defer ts.Close()

	spec := createSpecialist(t)
	staffHeaders := map[string]string{"X-Test-UserID": "1"}

	// Токен на двоих, но сессий открывается четыре: старт слот не расходует.
	res, body := postJSON(t, ts.URL+"/api/join-tokens", map[string]interface{}{
		"specialist_id": spec.ID,
		"ttl_minutes":   30,
		"max_uses":      2,
	}, staffHeaders)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Выпуск токена не удался")
	token := body["token"].(string)

	sessions := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		res, body = postJSON(t, ts.URL+"/api/join/start", map[string]string{"token": token}, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode, "Старт сессии %d не удался", i)
		sessions = append(sessions, body["session_token"].(string))
	}

	// Четыре конкурентных завершения: ровно два получают талон, остальные —
	// отказ по исчерпанному лимиту.
	var wg sync.WaitGroup
	type completion struct {
		code    int
		errCode string
	}
	results := make(chan completion, len(sessions))
	for i, session := range sessions {
		wg.Add(1)
		go func(i int, session string) {
			defer wg.Done()
			res, body := postJSON(t, ts.URL+"/api/join/complete", map[string]string{
				"session_token": session,
				"patient_name":  fmt.Sprintf("Пациент %d", i),
				"phone":         fmt.Sprintf("+7999000%04d", i),
			}, nil)
			errCode, _ := body["code"].(string)
			results <- completion{code: res.StatusCode, errCode: errCode}
		}(i, session)
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for r := range results {
		switch r.code {
		case http.StatusOK:
			succeeded++
		case http.StatusConflict:
			assert.Equal(t, "TOKEN_EXHAUSTED", r.errCode)
			rejected++
		default:
			t.Errorf("Неожиданный код ответа: %d (%s)", r.code, r.errCode)
		}
	}
	assert.Equal(t, 2, succeeded, "Талонов выдано не по лимиту токена")
	assert.Equal(t, 2, rejected, "Лишние завершения должны получить отказ")

	var jt models.JoinToken
	assert.NoError(t, storage.DB.Where("token = ?", token).First(&jt).Error)
	assert.Equal(t, 2, jt.CurrentUses, "Счётчик использований превысил лимит")

	var entries int64
	assert.NoError(t, storage.DB.Model(&models.QueueEntry{}).
		Joins("JOIN daily_queues ON daily_queues.id = queue_entries.queue_id").
		Where("daily_queues.specialist_id = ?", spec.ID).
		Count(&entries).Error)
	assert.Equal(t, int64(2), entries, "Записей больше, чем использований токена")
}

func TestTerminalTransitionCompaction(t *testing.T) {
	ts := setupTestServer()
	defer ts.Close()

	spec := createSpecialist(t)
	staffHeaders := map[string]string{"X-Test-UserID": "1"}

	ids := make(map[int]uint, 4)
	for i := 1; i <= 4; i++ {
		entry, err := queue.IssueTicket(queue.TicketRequest{
			SpecialistID: spec.ID,
			PatientName:  fmt.Sprintf("Пациент %d", i),
		})
		assert.NoError(t, err)
		ids[entry.TicketNumber] = entry.ID
	}

	var q models.DailyQueue
	assert.NoError(t, storage.DB.Where("specialist_id = ?", spec.ID).First(&q).Error)

	// 1. Завершение головной записи: хвост из трёх строк сдвигается на
	// единицу под уникальным индексом позиций, переход проходит без ошибок.
	statusURL := func(id uint) string {
		return ts.URL + "/api/entries/" + strconv.Itoa(int(id)) + "/status"
	}
	res, _ := postJSON(t, statusURL(ids[1]), map[string]string{"status": models.StatusServing}, staffHeaders)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = postJSON(t, statusURL(ids[1]), map[string]string{"status": models.StatusDone}, staffHeaders)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Завершение головной записи не удалось")

	var finished models.QueueEntry
	assert.NoError(t, storage.DB.First(&finished, ids[1]).Error)
	assert.Equal(t, models.StatusDone, finished.Status)
	assert.Equal(t, 0, finished.Position, "Терминальная запись должна получить позицию 0")

	assertDense := func(wantTickets []int) {
		var active []models.QueueEntry
		assert.NoError(t, storage.DB.
			Where("queue_id = ? AND status IN ?", q.ID, []string{models.StatusWaiting, models.StatusServing}).
			Order("position ASC").
			Find(&active).Error)
		assert.Equal(t, len(wantTickets), len(active))
		gotTickets := make([]int, 0, len(active))
		for i, e := range active {
			assert.Equal(t, i+1, e.Position, "Позиции не плотные 1..N")
			gotTickets = append(gotTickets, e.TicketNumber)
		}
		assert.ElementsMatch(t, wantTickets, gotTickets)
	}
	assertDense([]int{2, 3, 4})

	// 2. Перестановка и отмена, выполняемые конкурентно: уплотнение обязано
	// исходить из позиции на момент фиксации, а не прочитанной ранее.
	var wg sync.WaitGroup
	codes := make(chan int, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res, _ := postJSON(t, ts.URL+"/api/entries/"+strconv.Itoa(int(ids[4]))+"/move",
			map[string]int{"new_position": 1}, staffHeaders)
		codes <- res.StatusCode
	}()
	go func() {
		defer wg.Done()
		res, _ := postJSON(t, statusURL(ids[2]), map[string]string{"status": models.StatusCancelled}, staffHeaders)
		codes <- res.StatusCode
	}()
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code, "Конкурентные перестановка и отмена должны пройти")
	}

	assertDense([]int{3, 4})
}

func TestBulkReorder(t *testing.T) {
	ts := setupTestServer()
	defer ts.Close()

	spec := createSpecialist(t)
	staffHeaders := map[string]string{"X-Test-UserID": "1"}

	ids := make([]uint, 0, 4)
	for i := 0; i < 4; i++ {
		entry, err := queue.IssueTicket(queue.TicketRequest{
			SpecialistID: spec.ID,
			PatientName:  fmt.Sprintf("Пациент %d", i+1),
		})
		assert.NoError(t, err)
		ids = append(ids, entry.ID)
	}

	var q models.DailyQueue
	assert.NoError(t, storage.DB.Where("specialist_id = ?", spec.ID).First(&q).Error)
	reorderURL := ts.URL + "/api/queues/" + strconv.Itoa(int(q.ID)) + "/reorder"

	// Разворот очереди одной перестановкой.
	res, _ := postJSON(t, reorderURL, map[string]interface{}{
		"positions": []map[string]interface{}{
			{"entry_id": ids[0], "position": 4},
			{"entry_id": ids[1], "position": 3},
			{"entry_id": ids[2], "position": 2},
			{"entry_id": ids[3], "position": 1},
		},
	}, staffHeaders)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Перестановка не удалась")

	var entries []models.QueueEntry
	assert.NoError(t, storage.DB.Where("queue_id = ?", q.ID).Order("position ASC").Find(&entries).Error)
	assert.Equal(t, 4, entries[0].TicketNumber)
	assert.Equal(t, 3, entries[1].TicketNumber)
	assert.Equal(t, 2, entries[2].TicketNumber)
	assert.Equal(t, 1, entries[3].TicketNumber)

	// Неполная перестановка отклоняется до записи.
	res, body := postJSON(t, reorderURL, map[string]interface{}{
		"positions": []map[string]interface{}{
			{"entry_id": ids[0], "position": 1},
		},
	}, staffHeaders)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "INVALID_ORDERING", body["code"])

	// Позиции после отклонённой перестановки не изменились.
	var after []models.QueueEntry
	assert.NoError(t, storage.DB.Where("queue_id = ?", q.ID).Order("position ASC").Find(&after).Error)
	assert.Equal(t, 4, after[0].TicketNumber, "Отклонённая перестановка изменила позиции")
}
