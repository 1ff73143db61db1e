package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homecare/internal/bot"
	"homecare/internal/config"
	"homecare/internal/repository"
	"homecare/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("HOMECARE_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	snapshots := repository.NewSnapshotRepository(db)

	store := service.NewHomeStore(snapshots)
	if err := store.Hydrate(ctx); err != nil {
		log.Fatalf("hydrate: %v", err)
	}
	defer store.Close()

	reminderSvc := service.NewReminderService(store)

	var notifier *bot.Notifier
	if cfg.TelegramToken != "" {
		notifier, err = bot.New(cfg.TelegramToken, cfg.TelegramChatID, reminderSvc)
		if err != nil {
			log.Fatalf("bot: %v", err)
		}
		if !store.NotificationsEnabled() {
			store.ToggleNotifications()
		}
	}

	deliver := func(text string) {
		if !store.NotificationsEnabled() {
			return
		}
		if notifier == nil {
			log.Printf("[info] reminder: %s", text)
			return
		}
		if err := notifier.Send(text); err != nil {
			log.Printf("send reminder: %v", err)
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleWeekly(func() {
		deliver(reminderSvc.BuildWeeklySummary(time.Now()).Body)
	}); err != nil {
		log.Fatalf("schedule weekly summary: %v", err)
	}
	if cfg.ReminderInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReminderInterval, func() {
			now := time.Now()
			for _, task := range reminderSvc.DueSoon(now) {
				deliver(service.FormatReminder(task, now))
			}
		}); err != nil {
			log.Fatalf("schedule reminders: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Homecare daemon started.")
	if notifier != nil {
		if err := notifier.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("bot stopped with error: %v", err)
		}
	} else {
		<-ctx.Done()
	}
	log.Println("Shutdown complete.")
}
